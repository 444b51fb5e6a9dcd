// Package download provides an asynchronous single-file downloader.
//
// A Task fetches one URL with an HTTP GET, streams the body to a
// destination file and reports integer progress percentages followed by a
// single terminal Result to an Observer. Execute validates its arguments
// synchronously and then returns; all the work happens on a goroutine
// owned by the Task.
//
// # Outcomes
//
// Every invocation ends in exactly one of:
//   - OutcomeSuccess: the body was fully written and synced to disk.
//   - OutcomeTransportError: the request failed, the response was missing
//     or not 200 OK, or the declared content length was not positive.
//     The destination is never touched in this case.
//   - OutcomeStorageError: the destination could not be created, or
//     reading the body or writing the file failed while streaming.
//
// A failed download leaves the partially written file in place unless
// Config.RemovePartial is set.
//
// # Lifecycle
//
// A Task drives exactly one download. Create a new Task for every
// download; calling Execute a second time returns ErrTaskReused.
//
//	task := download.NewTask(client, download.Config{})
//	events := make(chan download.Event, 16)
//	err := task.Execute(ctx, download.Request{URL: u, DestinationPath: p},
//	    download.NewChanObserver(events))
//	for ev := range events {
//	    ...
//	}
package download
