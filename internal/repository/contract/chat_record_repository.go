package contract

import (
	"context"
)

// ChatRecordRepository appends rows to the chat_records table. Rows are never
// read back by the service; reporting queries run against the table directly.
type ChatRecordRepository interface {
	Append(ctx context.Context, collection string, values []string) error
}
