package mail

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"account-api/internal/storage"
)

// Outbox writes each message as an .eml object to a bucket that a separate
// relay drains.
type Outbox struct {
	store  storage.Service
	bucket string
	prefix string
	from   string
	now    func() time.Time
}

func NewOutbox(store storage.Service, bucket, prefix, from string) *Outbox {
	return &Outbox{
		store:  store,
		bucket: bucket,
		prefix: prefix,
		from:   from,
		now:    time.Now,
	}
}

func (o *Outbox) Send(ctx context.Context, msg Message) error {
	now := o.now().UTC()
	key := path.Join(o.prefix, now.Format("2006/01/02"), uuid.NewString()+".eml")

	_, err := o.store.PutObject(ctx, bytes.NewReader(render(o.from, msg, now)), storage.PutOptions{
		Bucket:      o.bucket,
		Key:         key,
		ContentType: "message/rfc822",
	})
	if err != nil {
		return fmt.Errorf("outbox put: %w", err)
	}
	return nil
}
