package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"
)

// dialTimeout bounds connection establishment. The fetch itself runs to
// completion or to a protocol-level failure.
const dialTimeout = 30 * time.Second

// Client fetches raw messages from a single IMAP server over implicit TLS.
// It holds no connection between fetches; each Fetch is a full
// login/select/fetch/logout session.
type Client struct {
	host string
	port string
	log  *zap.Logger
}

// New creates a client for the given server endpoint.
func New(host, port string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{host: host, port: port, log: log}
}

// connect dials the server and authenticates. The caller is responsible
// for logging out the returned client.
func (c *Client) connect(ctx context.Context, creds Credentials) (*imapclient.Client, error) {
	addr := net.JoinHostPort(c.host, c.port)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: dialTimeout},
		Config:    &tls.Config{ServerName: c.host},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}

	client := imapclient.New(conn, nil)

	if err := client.Login(creds.Username, creds.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{Username: creds.Username, Err: err}
	}

	return client, nil
}

// Fetch logs in, selects folder read-only, lists all message UIDs, and
// retrieves the full raw bodies of the last limit messages (most recent
// by server-assigned sequence). The session is closed on all paths.
// Server-side read state is not modified (Peek fetch, read-only select).
func (c *Client) Fetch(
	ctx context.Context,
	creds Credentials,
	folder string,
	limit int,
) ([]RawMessage, error) {
	client, err := c.connect(ctx, creds)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", folder, err)
	}

	// An empty criteria set matches every message in the folder.
	searchData, err := client.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", folder, err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		c.log.Info("folder is empty", zap.String("folder", folder))
		return nil, nil
	}

	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	uidSet := imap.UIDSetNum(uids...)

	// Peek keeps the \Seen flag untouched on the server.
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var messages []RawMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			c.log.Warn("collecting message data", zap.Error(err))
			continue
		}

		raw := buf.FindBodySection(bodySection)
		if raw == nil {
			c.log.Warn("message has no body section",
				zap.Uint32("uid", uint32(buf.UID)))
			continue
		}

		messages = append(messages, RawMessage{
			UID:  uint32(buf.UID),
			Body: raw,
		})
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching messages: %w", err)
	}

	c.log.Info("fetched messages",
		zap.String("folder", folder),
		zap.Int("count", len(messages)))

	return messages, nil
}
