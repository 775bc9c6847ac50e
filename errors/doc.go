// Package errors classifies application faults and formats them as HTTP
// responses.
//
// A ClassifiedError pairs an ErrorCode with the HTTP status it resolves to
// through a fixed status table. Format turns any error into the status to
// send and a JSON body: classified faults produce a flat body, every other
// error is nested under an "error" key.
//
//	err := errors.New(errors.ErrCodeNotFound, errors.WithMetadata(map[string]any{"id": 7}))
//	status, body := errors.Format(err, errors.FormatOptions{Debug: false})
//	// status == 404, body == Response{Status: 404, Message: "NotFound", Metadata: ...}
package errors
