// Package mail implements the MailProvider port on the Gmail API with
// OAuth2 installed-app credentials.
package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ronaldv/minime-agent/internal/domain"
)

// GmailProvider talks to the Gmail API for the authorized user. The
// underlying service is built lazily so that missing credentials
// surface as an error on the first mail operation instead of at
// startup.
type GmailProvider struct {
	credentialsPath string
	tokenPath       string

	once sync.Once
	svc  *gmail.Service
	err  error
}

func NewGmailProvider(credentialsPath, tokenPath string) *GmailProvider {
	return &GmailProvider{
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
	}
}

// service initializes the Gmail client on first use.
func (p *GmailProvider) service(ctx context.Context) (*gmail.Service, error) {
	p.once.Do(func() {
		p.svc, p.err = p.buildService(ctx)
	})
	return p.svc, p.err
}

func (p *GmailProvider) buildService(ctx context.Context) (*gmail.Service, error) {
	creds, err := os.ReadFile(p.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading gmail credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds,
		gmail.GmailReadonlyScope,
		gmail.GmailSendScope,
		gmail.GmailModifyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing gmail credentials: %w", err)
	}

	token, err := loadToken(p.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("loading gmail token (run the auth flow first): %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	return svc, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}
	return token, nil
}

func (p *GmailProvider) ListMessages(ctx context.Context, label, query string, max int64) ([]domain.EmailRef, error) {
	svc, err := p.service(ctx)
	if err != nil {
		return nil, err
	}

	call := svc.Users.Messages.List("me").MaxResults(max).Context(ctx)
	if label != "" {
		call = call.LabelIds(label)
	}
	if query != "" {
		call = call.Q(query)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	refs := make([]domain.EmailRef, 0, len(res.Messages))
	for _, m := range res.Messages {
		refs = append(refs, domain.EmailRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

func (p *GmailProvider) GetMessage(ctx context.Context, id string) (*domain.EmailMessage, error) {
	svc, err := p.service(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", id, err)
	}
	return decodeMessage(msg), nil
}

func (p *GmailProvider) GetThread(ctx context.Context, id string) (*domain.EmailThread, error) {
	svc, err := p.service(ctx)
	if err != nil {
		return nil, err
	}

	thread, err := svc.Users.Threads.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching thread %s: %w", id, err)
	}

	out := &domain.EmailThread{ID: thread.Id}
	for _, m := range thread.Messages {
		out.Messages = append(out.Messages, decodeMessage(m))
	}
	return out, nil
}

func (p *GmailProvider) SendRaw(ctx context.Context, raw string) error {
	svc, err := p.service(ctx)
	if err != nil {
		return err
	}

	_, err = svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// decodeMessage flattens a Gmail API message into the domain shape:
// headers copied over, body resolved to the first text/plain part.
func decodeMessage(msg *gmail.Message) *domain.EmailMessage {
	out := &domain.EmailMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload == nil {
		return out
	}

	for _, h := range msg.Payload.Headers {
		out.Headers = append(out.Headers, domain.EmailHeader{Name: h.Name, Value: h.Value})
	}
	out.Body = extractPlainText(msg.Payload)
	return out
}

// extractPlainText walks the MIME tree for the first decodable
// text/plain part. Single-part messages carry the body on the payload
// itself.
func extractPlainText(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}

	for _, child := range part.Parts {
		if text := extractPlainText(child); text != "" {
			return text
		}
	}

	// Non-multipart fallback: some messages put text on the root part
	// without a text/plain mime type.
	if len(part.Parts) == 0 && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	return ""
}

// decodeBody handles both padded and unpadded base64url body data.
func decodeBody(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}
