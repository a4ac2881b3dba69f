// Package email pulls dataset files out of mailbox attachments. A poller
// fetches unseen messages over IMAP, keeps the ones whose subject carries
// the configured marker and drops their CSV/XLSX attachments into the data
// directory, where the file monitor picks them up.
package email

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	maxFetchMessages = 100
	fetchBufferSize  = 10
)

// Fetcher is the mailbox access the ingestor needs.
type Fetcher interface {
	Connect() error
	Disconnect()
	// FetchUnseen returns the unseen messages received since the given
	// time, newest last.
	FetchUnseen(since time.Time) ([]*Message, error)
}

// Message is one fetched mail with its decoded headers and attachments.
type Message struct {
	UID         uint32
	Date        time.Time
	From        string
	Subject     string
	Attachments []Attachment
}

// Attachment carries one decoded attachment.
type Attachment struct {
	Filename string
	Content  []byte
}

// Client is the IMAP-backed Fetcher.
type Client struct {
	server   string
	username string
	password string
	folder   string

	mu        sync.Mutex
	client    *client.Client
	connected bool
}

func NewClient(server, username, password, folder string) *Client {
	if folder == "" {
		folder = "INBOX"
	}
	return &Client{
		server:   server,
		username: username,
		password: password,
		folder:   folder,
	}
}

// Connect dials the server over TLS and logs in. An existing healthy
// connection is reused.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		if _, err := c.client.Capability(); err == nil {
			return nil
		}
		c.client.Logout()
		c.client = nil
		c.connected = false
	}

	conn, err := client.DialTLS(c.server, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.server, err)
	}
	if err := conn.Login(c.username, c.password); err != nil {
		conn.Logout()
		return fmt.Errorf("login %s: %w", c.username, err)
	}

	c.client = conn
	c.connected = true
	return nil
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Logout()
		c.client = nil
	}
	c.connected = false
}

// FetchUnseen searches the folder for unseen mail since the given time and
// fetches their bodies.
func (c *Client) FetchUnseen(since time.Time) ([]*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, fmt.Errorf("not connected")
	}
	if _, err := c.client.Select(c.folder, false); err != nil {
		return nil, fmt.Errorf("select %s: %w", c.folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	criteria.Since = since

	ids, err := c.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > maxFetchMessages {
		ids = ids[:maxFetchMessages]
	}
	return c.fetchMessages(ids)
}

func (c *Client) fetchMessages(ids []uint32) ([]*Message, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchFlags,
		imap.FetchInternalDate,
		imap.FetchUid,
		section.FetchItem(),
	}

	raw := make(chan *imap.Message, fetchBufferSize)
	done := make(chan error, 1)
	go func() {
		done <- c.client.Fetch(seqset, items, raw)
	}()

	var msgs []*Message
	for m := range raw {
		parsed, err := parseMessage(m, section)
		if err != nil {
			continue
		}
		msgs = append(msgs, parsed)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return msgs, nil
}

func parseMessage(m *imap.Message, section *imap.BodySectionName) (*Message, error) {
	r := m.GetBody(section)
	if r == nil {
		return nil, fmt.Errorf("message %d has no body", m.Uid)
	}
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("read message %d: %w", m.Uid, err)
	}

	header := mr.Header
	date, _ := header.Date()
	msg := &Message{
		UID:     m.Uid,
		Date:    date,
		From:    decodeHeader(header.Get("From")),
		Subject: decodeHeader(header.Get("Subject")),
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, err := h.Filename()
		if err != nil || filename == "" {
			continue
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, p.Body); err != nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename: decodeHeader(filename),
			Content:  buf.Bytes(),
		})
	}
	return msg, nil
}

// decodeHeader decodes =?charset?encoding?...?= encoded words, falling
// back to the raw header when decoding fails.
func decodeHeader(header string) string {
	decoder := mime.WordDecoder{CharsetReader: charsetReader}
	decoded, err := decoder.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "gbk", "gb2312":
		return transform.NewReader(input, simplifiedchinese.GBK.NewDecoder()), nil
	case "gb18030":
		return transform.NewReader(input, simplifiedchinese.GB18030.NewDecoder()), nil
	default:
		return input, nil
	}
}
