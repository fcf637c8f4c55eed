// Package report writes analysis results as a JSON report and renders them
// for the terminal.
//
// The JSON report is an array of result objects indented with four spaces.
// Text is written verbatim, so bios keep their emoji and markup characters.
package report
