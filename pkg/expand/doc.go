/*
Package expand implements the batch expansion engine: it pads files with zero bytes.

	+-------------+      +-------------+      +-------------+
	|   Request   | ---> |   Engine    | ---> |  Callbacks  |
	| (validated) |      | (one worker)|      | (caller UI) |
	+-------------+      +------+------+      +-------------+
	                            |
	                     +------+------+
	                     | processFile |
	                     | copy + pad  |
	                     +-------------+

🎯 Purpose:
- Applies one request.Request to an ordered snapshot of file paths
- Produces exactly one Result per file, in input order
- Emits progress after each file and a single Summary at the end

🔄 Flow, per file:
1. Resolve the output path from the request's output policy
2. Copy the input to the output path when they differ (mode and mtime preserved)
3. Compute the byte count (append: fixed, set-size: max(0, target-current))
4. Append zero bytes with O_APPEND; existing content is never rewritten
5. Record the Result (0 bytes added is a success)

⚡ Concurrency:
Exactly one run at a time. StartRun returns ErrRunInProgress while the running
flag is set, and the flag is cleared only after OnComplete returns. Files are
processed strictly one after another, so no locking around the file system is
needed. Callbacks run on the worker goroutine; callers marshal them onto their
own rendering context.

Runs are not cancellable once started. The context only carries the logger.

🔍 Example:

	eng := expand.New(expand.Options{})
	err := eng.StartRun(ctx, files, req, expand.Callbacks{
		OnFileResult: func(r expand.Result) { ... },
		OnComplete:   func(s expand.Summary) { ... },
	})
*/
package expand
