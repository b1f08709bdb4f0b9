// Package catalog fetches the project catalog from the projectdeck API.
//
// The client performs a single GET /api/projects/all per call and never
// retries. Every failure (transport, non-2xx status, malformed payload) is
// reported as a *FetchError so callers can log the kind and status before
// treating the result as an empty catalog.
//
//	client := catalog.NewClient(catalog.Config{BaseURL: "http://localhost:9090"})
//	projects, err := client.FetchProjects(ctx)
//	var fe *catalog.FetchError
//	if errors.As(err, &fe) {
//	    logger.Warn(ctx, "catalog fetch failed", zap.String("kind", fe.Kind.String()))
//	}
//
// Cancelling ctx aborts an in-flight fetch; the discovery view relies on
// this when it is disposed before the fetch settles.
package catalog
