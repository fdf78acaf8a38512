// Package navigo computes shortest routes on large static road graphs and
// lets a display layer watch the search while it runs.
//
// # Quick Start
//
//	ctx := context.Background()
//	nav, _ := navigo.Open(ctx, navigo.Local("./bw-2024.bin"))
//	defer nav.Close()
//
//	start, _ := nav.NearestNode(48.78, 9.18)
//	target, _ := nav.NearestNode(49.14, 9.22)
//	_ = nav.SetStart(start)
//	_ = nav.SetTarget(target)
//
//	if nav.StartSearch() {
//	    _ = nav.Wait(ctx)
//	}
//	fmt.Println(navigo.FormatDuration(nav.RouteTimeSeconds()))
//
// Graphs in object storage load through a blob store:
//
//	store := s3.NewStore(client, "graphs", "osm/")
//	nav, _ := navigo.Open(ctx, navigo.Remote(store, "bw-2024.bin"))
//
// # Session model
//
// A Navigator runs at most one search at a time on its own goroutine.
// StartSearch returns immediately; pollers read progress through lock-free
// accessors:
//
//	for nav.State() == navigo.StateRouting {
//	    if c, ok := nav.BestCandidateCoordinate(); ok {
//	        draw(c)
//	    }
//	    drawDots(nav.PreviewCoordinates())
//	    time.Sleep(50 * time.Millisecond)
//	}
//
// The final route, route time and the return to StateStandby are published
// together, so a poller that observes StateStandby also observes the final
// route. NeedsRedraw/ClearRedrawFlag is the only change notification.
//
// # Reachability probes
//
// PathExists and Probe answer "is there any path" under a deadline. They
// run on the caller's goroutine with their own scratch state and never
// touch the session.
package navigo
