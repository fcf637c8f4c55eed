// Package detector scores Instagram accounts for signs of being fake and runs
// the analysis over the likers of a post.
//
// The classifier is a fixed additive heuristic: each rule that matches adds
// points to a suspicion score and an account is flagged once the score
// reaches FakeThreshold. Analyze turns a fetched profile into a Result, and
// Detector.Run drives the whole flow one profile at a time.
package detector
