package app

import (
	"context"
	"fmt"

	"github.com/yungbote/model3d-backend/internal/observability"
	"github.com/yungbote/model3d-backend/internal/platform/gcp"
	"github.com/yungbote/model3d-backend/internal/platform/imgbb"
	"github.com/yungbote/model3d-backend/internal/platform/keylock"
	"github.com/yungbote/model3d-backend/internal/platform/logger"
	"github.com/yungbote/model3d-backend/internal/platform/tripo"
	"github.com/yungbote/model3d-backend/internal/services"
)

type Clients struct {
	Tripo     tripo.Client
	Publisher services.ImagePublisher
	Locker    keylock.Locker

	closers []func() error
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	out := Clients{
		Tripo: tripo.New(log, cfg.Tripo, metrics),
	}

	switch cfg.ImagePublishMode {
	case "", PublishModeImgBB:
		out.Publisher = imgbb.New(log, cfg.ImgBB, metrics)
	case PublishModeGCS:
		pub, err := gcp.NewBucketPublisher(ctx, log, cfg.ObjectStorage, metrics)
		if err != nil {
			return Clients{}, fmt.Errorf("init bucket publisher: %w", err)
		}
		out.Publisher = pub
		out.closers = append(out.closers, pub.Close)
	default:
		return Clients{}, fmt.Errorf("unsupported IMAGE_PUBLISH_MODE %q (want imgbb or gcs)", cfg.ImagePublishMode)
	}

	if cfg.Redis.Addr != "" {
		rl, err := keylock.NewRedis(ctx, log, cfg.Redis)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis lock: %w", err)
		}
		out.Locker = rl
		out.closers = append(out.closers, rl.Close)
		log.Info("Per-animal lock backed by Redis", "addr", cfg.Redis.Addr)
	} else {
		out.Locker = keylock.NewLocal()
		log.Info("Per-animal lock is in-process (set REDIS_ADDR to share it across instances)")
	}
	return out, nil
}

func (c Clients) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}
