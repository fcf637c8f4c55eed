// Package instagram is a small client for Instagram's private mobile API.
//
// It covers what a liker analysis needs: password login with a reusable
// session artifact, post reference resolution, post likers and user info.
//
// Example usage:
//
//	client := instagram.NewClient(30*time.Second, log,
//		instagram.WithRateLimiter(ratelimit.NewPerMinute(30)),
//		instagram.WithRetry(cfg.Retry),
//	)
//
//	prior, _ := instagram.LoadSettings("settings.json")
//	settings, err := client.Login(ctx, "username", "password", prior)
//	if err != nil {
//		if errors.Is(err, errors.ErrorTypeChallenge) {
//			// Log in once from the app to clear the checkpoint
//		}
//	}
//	_ = instagram.DumpSettings("settings.json", settings)
//
//	mediaID, _ := instagram.ResolveMediaID("https://www.instagram.com/p/CxYzAbC1234/")
//	likers, _ := client.MediaLikers(ctx, mediaID)
//	user, _ := client.UserInfo(ctx, string(likers[0].PK))
package instagram
