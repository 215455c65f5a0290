package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/cache"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/logger"
	"golang.org/x/sync/singleflight"
)

const maxAttachmentSize = 25 << 20

var (
	ErrAttachmentDownload = errors.New("failed to download attachment")
	ErrAttachmentTooLarge = errors.New("attachment is too large")
)

// Resolver loads the context a command needs from a message: the message it
// replies to and the bytes of its image attachment.
type Resolver struct {
	client discord.Client
	cache  cache.Cache
	http   *http.Client
	group  singleflight.Group
	logger logger.Logger
}

func NewResolver(client discord.Client, c cache.Cache, httpClient *http.Client, log logger.Logger) *Resolver {
	return &Resolver{
		client: client,
		cache:  c,
		http:   httpClient,
		logger: log,
	}
}

// Referenced returns the message msg replies to, or nil when msg is not a
// reply or the referenced message can not be loaded.
func (r *Resolver) Referenced(ctx context.Context, msg *discord.Message) *discord.Message {
	if !msg.IsReply() {
		return nil
	}
	if msg.ReplyTo != nil {
		return msg.ReplyTo
	}

	key := msg.ChannelID + ":" + msg.ReplyToID
	v, err, _ := r.group.Do("message:"+key, func() (any, error) {
		return r.client.GetMessage(ctx, msg.ChannelID, msg.ReplyToID)
	})
	if err != nil {
		r.logger.WithError(err).WithFields(logger.Fields{
			"message_id":   msg.ID,
			"reference_id": msg.ReplyToID,
		}).Warn("Failed to fetch replied message")
		return nil
	}
	ref := v.(*discord.Message)
	msg.ReplyTo = ref
	return ref
}

// Prompt returns text, or the text of the replied message when text is empty.
func (r *Resolver) Prompt(ctx context.Context, msg *discord.Message, text string) string {
	if text != "" {
		return text
	}
	if ref := r.Referenced(ctx, msg); ref != nil {
		return ref.Content
	}
	return ""
}

// Image returns the first attachment of msg, falling back to the replied
// message. A failed download of msg's own attachment is an error, a failure on
// the replied message is logged and ignored.
func (r *Resolver) Image(ctx context.Context, msg *discord.Message) (*ai.Image, error) {
	if a, ok := pickAttachment(msg.Attachments); ok {
		return r.Download(ctx, a)
	}

	ref := r.Referenced(ctx, msg)
	if ref == nil {
		return nil, nil
	}
	a, ok := pickAttachment(ref.Attachments)
	if !ok {
		return nil, nil
	}
	img, err := r.Download(ctx, a)
	if err != nil {
		r.logger.WithError(err).WithField("message_id", msg.ID).Warn("Failed to fetch image from replied message")
		return nil, nil
	}
	return img, nil
}

func (r *Resolver) Download(ctx context.Context, a discord.Attachment) (*ai.Image, error) {
	if a.Size > maxAttachmentSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrAttachmentTooLarge, a.Size)
	}

	key := cache.AttachmentKey(a.URL)
	if data, ok := r.cache.Get(key); ok {
		return newImage(a, data), nil
	}

	v, err, _ := r.group.Do("attachment:"+a.URL, func() (any, error) {
		data, err := r.fetch(ctx, a.URL)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(key, data, cache.AttachmentTTL); err != nil {
			r.logger.WithError(err).Warn("Failed to cache attachment")
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return newImage(a, v.([]byte)), nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentDownload, err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAttachmentDownload, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentDownload, err)
	}
	if len(data) > maxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}
	return data, nil
}

func pickAttachment(attachments []discord.Attachment) (discord.Attachment, bool) {
	if len(attachments) == 0 {
		return discord.Attachment{}, false
	}
	for _, a := range attachments {
		if discord.IsImage(a) {
			return a, true
		}
	}
	return attachments[0], true
}

func newImage(a discord.Attachment, data []byte) *ai.Image {
	contentType := a.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &ai.Image{
		Data:        data,
		ContentType: contentType,
		Filename:    a.Filename,
	}
}
