package media

import (
	"context"
	"fmt"
	"time"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/logger"
)

type StabilityVideoAPI interface {
	StartVideo(ctx context.Context, image *ai.Image) (string, error)
	VideoResult(ctx context.Context, generationID string) ([]byte, bool, error)
}

type VideoService struct {
	api          StabilityVideoAPI
	pollInterval time.Duration
	pollAttempts int
	logger       logger.Logger
}

func NewVideoService(api StabilityVideoAPI, pollInterval time.Duration, pollAttempts int, log logger.Logger) *VideoService {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if pollAttempts <= 0 {
		pollAttempts = 60
	}
	return &VideoService{
		api:          api,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
		logger:       log.WithField("service", "video"),
	}
}

func (s *VideoService) Generate(ctx context.Context, image *ai.Image) Result {
	if image == nil {
		return failure(fmt.Sprintf("Error generating video: %v", ErrImageRequired))
	}

	video, err := s.generate(ctx, image)
	if err != nil {
		s.logger.WithError(err).Error("Video generation failed")
		return failure(fmt.Sprintf("Error generating video: %v", err))
	}
	return success(video, "Video generated using Stability AI")
}

func (s *VideoService) generate(ctx context.Context, image *ai.Image) ([]byte, error) {
	resized, err := resizeForStability(image)
	if err != nil {
		return nil, err
	}

	generationID, err := s.api.StartVideo(ctx, resized)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithField("generation_id", generationID)
	log.Info("Video generation started")

	for attempt := range s.pollAttempts {
		video, done, err := s.api.VideoResult(ctx, generationID)
		if err != nil {
			return nil, err
		}
		if done {
			log.WithField("attempt", attempt+1).Info("Video ready")
			return video, nil
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w after %s", ErrVideoTimeout, s.pollInterval*time.Duration(s.pollAttempts))
}
