package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/forvaidya/icomment/internal/config"
	"github.com/forvaidya/icomment/internal/repository"
	"github.com/forvaidya/icomment/internal/service/attachment"
	"github.com/forvaidya/icomment/internal/service/comment"
	"github.com/forvaidya/icomment/internal/service/discussion"
	"github.com/forvaidya/icomment/internal/service/moderation"
	"github.com/forvaidya/icomment/internal/service/user"
)

type Services struct {
	User       user.Service
	Discussion discussion.Service
	Comment    comment.Service
	Attachment attachment.Service
	Moderation moderation.Service
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, minioClient *minio.Client, cfg *config.Config, log *zap.Logger) *Services {
	moderationService := moderation.NewService(repos.ModerationLog)
	userService := user.NewService(repos.User, moderationService)
	discussionService := discussion.NewService(repos.Discussion, repos.User, moderationService)

	var blobs attachment.BlobStore
	if minioClient != nil {
		blobs = attachment.NewMinIOBlobStore(minioClient, cfg.MinIOBucket)
	}
	attachmentService := attachment.NewService(repos.Attachment, repos.Comment, repos.User, blobs, log)

	commentService := comment.NewService(
		repos.Comment,
		repos.Discussion,
		repos.User,
		attachmentService,
		moderationService,
		redisClient,
		cfg.TreeCacheTTL,
		log,
	)

	return &Services{
		User:       userService,
		Discussion: discussionService,
		Comment:    commentService,
		Attachment: attachmentService,
		Moderation: moderationService,
	}
}
