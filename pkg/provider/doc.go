/*
Package provider fetches the source collection document for a run.

	            +-------------+
	            |  Provider   |
	            |  (Source)   |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|  GitHub   | |  HTTP   | |   Local   |
	| github:// | | http(s) | |   Files   |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Hides where the collection comes from
- Selects a provider by the scheme of the location

🔄 Flow:
1. Receives a location from the configuration
2. Looks up the factory registered for its scheme
3. Returns the raw document bytes

📍 Locations:
- collections/orders.json or file://collections/orders.json
- https://example.com/orders.postman.json
- github://owner/repo/path/to/orders.json@ref

The github provider registers itself from its own package, so binaries that
need it import github.com/walteh/colsync/pkg/provider/github for side effects.

🔍 Example:

	data, err := provider.Fetch(ctx, cfg.Source, provider.Options{
		Fs:          afero.NewOsFs(),
		GitHubToken: cfg.GitHubToken,
	})
*/
package provider
