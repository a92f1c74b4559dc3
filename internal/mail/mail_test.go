package mail

import (
	"context"
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-api/internal/storage"
)

var testMessage = Message{
	To:      "a@b.com",
	Subject: "Reset your password\r\nBcc: evil@x.com",
	Body:    "line one\nline two",
}

func TestRender(t *testing.T) {
	date := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := string(render("noreply@accounts.dev", testMessage, date))

	assert.Contains(t, out, "From: noreply@accounts.dev\r\n")
	assert.Contains(t, out, "To: a@b.com\r\n")
	assert.Contains(t, out, "Subject: Reset your passwordBcc: evil@x.com\r\n")
	assert.Contains(t, out, "Date: Fri, 02 Jan 2026 03:04:05 +0000\r\n")
	assert.Contains(t, out, "@accounts.dev>\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nline one\r\nline two"))
}

func TestSMTPSender(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "user@example.com", "pw", "")

	var gotAddr, gotFrom string
	var gotTo []string
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		assert.NotNil(t, a)
		return nil
	}

	require.NoError(t, s.Send(context.Background(), testMessage))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "user@example.com", gotFrom)
	assert.Equal(t, []string{"a@b.com"}, gotTo)

	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay refused")
	}
	assert.ErrorContains(t, s.Send(context.Background(), testMessage), "relay refused")
}

type fakeStorage struct {
	opts storage.PutOptions
	body string
	err  error
}

func (f *fakeStorage) PutObject(_ context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(body)
	f.opts, f.body = opts, string(b)
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func TestOutbox(t *testing.T) {
	store := &fakeStorage{}
	o := NewOutbox(store, "mail", "outbox", "noreply@accounts.dev")
	o.now = func() time.Time { return time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, o.Send(context.Background(), testMessage))
	assert.Equal(t, "mail", store.opts.Bucket)
	assert.True(t, strings.HasPrefix(store.opts.Key, "outbox/2026/05/06/"))
	assert.True(t, strings.HasSuffix(store.opts.Key, ".eml"))
	assert.Equal(t, "message/rfc822", store.opts.ContentType)
	assert.Contains(t, store.body, "To: a@b.com")

	store.err = errors.New("bucket gone")
	assert.ErrorContains(t, o.Send(context.Background(), testMessage), "bucket gone")
}

func TestLogSender(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	require.NoError(t, NewLogSender(logger).Send(context.Background(), testMessage))
	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, "a@b.com", hook.Entries[0].Data["to"])
}
