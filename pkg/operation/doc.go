/*
Package operation runs the stages that turn a source collection into a
bundled, written and published one.

	+--------+   +-----+   +---------+   +---------+   +-------+   +------+
	|  load  |-->| tag |-->| regroup |-->| replace |-->| write |-->| sync |
	+--------+   +-----+   +---------+   +---------+   +-------+   +------+

🎯 Purpose:
- Fetches the source through the provider registry
- Tags contract tests and moves them into their own group
- Applies raw text replacements to the encoded collection
- Delegates file storage to the status package
- Publishes through the syncer

🔄 Flow:
Stages run one after another on a shared Run. A stage replaces Run.Tree with
a new tree instead of mutating it. Stages that have nothing to do for the
configuration are left out of the pipeline, and the first failing stage stops
the run.

🔍 Example:

	ops, err := operation.Pipeline(operation.Options{
		Config: cfg,
		Fs:     afero.NewOsFs(),
		Store:  store,
		Cache:  cache.Load(ctx, fs, cfg.Sync.CacheFile),
	})
	if err != nil {
		return err
	}

	run := &operation.Run{}
	if err := operation.NewRunner(zerolog.Ctx(ctx)).Run(ctx, run, ops...); err != nil {
		return err
	}
*/
package operation
