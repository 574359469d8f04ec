package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// EventArchive stores the verified raw body of every relevant webhook
// delivery so the event stream can be replayed against the reconciler.
// Archival is best-effort: an archive failure never fails the delivery.
type EventArchive interface {
	ArchiveEvent(ctx context.Context, eventID string, payload []byte)
}

type eventArchive struct {
	s3Client *s3.Client
	bucket   string
	logger   zerolog.Logger
}

// NewEventArchive creates an EventArchive backed by an S3-compatible bucket.
func NewEventArchive(s3Client *s3.Client, bucket string, logger zerolog.Logger) EventArchive {
	return &eventArchive{
		s3Client: s3Client,
		bucket:   bucket,
		logger:   logger.With().Str("service", "EventArchive").Logger(),
	}
}

func (a *eventArchive) ArchiveEvent(ctx context.Context, eventID string, payload []byte) {
	key := fmt.Sprintf("webhook-events/%s/%s.json", time.Now().UTC().Format("2006/01/02"), eventID)
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("event_id", eventID).Msg("Failed to archive webhook event")
		return
	}
	a.logger.Debug().Str("event_id", eventID).Str("key", key).Msg("Webhook event archived")
}
