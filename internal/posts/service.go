package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/WellingtonDevBR/immigru-app/internal/journey"
)

// Feed filters accepted by FetchFeed.
const (
	FeedFilterAll       = "all"
	FeedFilterUser      = "user"
	FeedFilterFollowing = "following"
	FeedFilterMyGroves  = "my-groves"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100

	defaultRecommendationLimit = 6
	maxRecommendationLimit     = 20
)

var (
	errMissingDatabase   = errors.New("posts: database handle is required")
	errMissingIDProvider = errors.New("posts: id provider is required")
	// ErrMissingUserID indicates an empty acting-user identifier.
	ErrMissingUserID = errors.New("posts: user identifier is required")
	// ErrEmptyContent rejects posts whose content is blank.
	ErrEmptyContent = errors.New("posts: content is required")
	// ErrUnsafeContent rejects posts carrying script payloads.
	ErrUnsafeContent = errors.New("posts: content contains disallowed markup")
	// ErrUnknownFilter rejects feed filters outside the known set.
	ErrUnknownFilter = errors.New("posts: unknown feed filter")
)

// IDProvider issues identifiers for new rows.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies of the posts service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service manages posts, the feed, and grove memberships.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	ids    IDProvider
	logger *zap.Logger
}

// NewService constructs the posts service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, clock: clock, ids: cfg.IDProvider, logger: logger}, nil
}

// LinkPreviewInput carries resolved link metadata supplied with a new post.
type LinkPreviewInput struct {
	URL         string  `json:"url"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// CreatePostInput is the payload for CreatePost.
type CreatePostInput struct {
	Content     string            `json:"content"`
	ImageURL    *string           `json:"imageUrl,omitempty"`
	GroveID     *string           `json:"groveId,omitempty"`
	LinkPreview *LinkPreviewInput `json:"linkPreview,omitempty"`
}

// FeedPost is a post enriched with its counters and link preview.
type FeedPost struct {
	Post
	LikeCount    int64        `json:"likeCount"`
	CommentCount int64        `json:"commentCount"`
	LinkPreview  *LinkPreview `json:"linkPreview,omitempty"`
}

// CreatePost validates and stores a new post with its optional link preview.
func (s *Service) CreatePost(ctx context.Context, userID string, input CreatePostInput) (*FeedPost, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if input.Content == "" {
		return nil, ErrEmptyContent
	}
	if journey.ContainsScript(input.Content) {
		return nil, ErrUnsafeContent
	}

	postID, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("posts: issue post id: %w", err)
	}
	now := s.clock().UTC()
	stored := Post{
		ID:        postID,
		UserID:    userID,
		Content:   input.Content,
		ImageURL:  input.ImageURL,
		GroveID:   input.GroveID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var preview *LinkPreview
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&stored).Error; err != nil {
			return fmt.Errorf("posts: insert post: %w", err)
		}
		if input.LinkPreview == nil || input.LinkPreview.URL == "" {
			return nil
		}
		previewID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("posts: issue preview id: %w", err)
		}
		preview = &LinkPreview{
			ID:          previewID,
			PostID:      postID,
			URL:         input.LinkPreview.URL,
			Title:       input.LinkPreview.Title,
			Description: input.LinkPreview.Description,
			ImageURL:    input.LinkPreview.ImageURL,
			CreatedAt:   now,
		}
		if err := tx.Create(preview).Error; err != nil {
			return fmt.Errorf("posts: insert link preview: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &FeedPost{Post: stored, LinkPreview: preview}, nil
}

// FeedQuery selects and paginates the feed.
type FeedQuery struct {
	Filter             string `json:"filter"`
	TargetUserID       string `json:"userId"`
	ExcludeCurrentUser bool   `json:"excludeCurrentUser"`
	Limit              int    `json:"limit"`
	Offset             int    `json:"offset"`
}

// FetchFeed returns non-deleted posts matching the query, newest first.
func (s *Service) FetchFeed(ctx context.Context, userID string, query FeedQuery) ([]FeedPost, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	scope := s.db.WithContext(ctx).Model(&Post{}).Where("deleted_at IS NULL")
	switch query.Filter {
	case "", FeedFilterAll:
	case FeedFilterUser:
		target := query.TargetUserID
		if target == "" {
			target = userID
		}
		scope = scope.Where("user_id = ?", target)
	case FeedFilterFollowing:
		scope = scope.Where("user_id IN (?)",
			s.db.Model(&UserFollow{}).Select("followee_id").Where("follower_id = ?", userID))
	case FeedFilterMyGroves:
		scope = scope.Where("grove_id IN (?)",
			s.db.Model(&GroveMember{}).Select("grove_id").Where("user_id = ?", userID))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, query.Filter)
	}
	if query.ExcludeCurrentUser {
		scope = scope.Where("user_id <> ?", userID)
	}

	var rows []Post
	err := scope.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("posts: load feed: %w", err)
	}
	if len(rows) == 0 {
		return []FeedPost{}, nil
	}

	postIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		postIDs = append(postIDs, row.ID)
	}

	likeCounts, err := s.countByPost(ctx, &PostLike{}, postIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.countByPost(ctx, &PostComment{}, postIDs)
	if err != nil {
		return nil, err
	}

	var previews []LinkPreview
	err = s.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&previews).Error
	if err != nil {
		return nil, fmt.Errorf("posts: load link previews: %w", err)
	}
	previewByPost := make(map[string]*LinkPreview, len(previews))
	for index := range previews {
		previewByPost[previews[index].PostID] = &previews[index]
	}

	feed := make([]FeedPost, 0, len(rows))
	for _, row := range rows {
		feed = append(feed, FeedPost{
			Post:         row,
			LikeCount:    likeCounts[row.ID],
			CommentCount: commentCounts[row.ID],
			LinkPreview:  previewByPost[row.ID],
		})
	}
	return feed, nil
}

type postCount struct {
	PostID string
	Total  int64
}

func (s *Service) countByPost(ctx context.Context, model any, postIDs []string) (map[string]int64, error) {
	var counts []postCount
	err := s.db.WithContext(ctx).Model(model).
		Select("post_id", "COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("posts: count by post: %w", err)
	}
	byPost := make(map[string]int64, len(counts))
	for _, count := range counts {
		byPost[count.PostID] = count.Total
	}
	return byPost, nil
}

// JoinGroves records grove memberships for the user, ignoring duplicates.
func (s *Service) JoinGroves(ctx context.Context, userID string, groveIDs []string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if len(groveIDs) == 0 {
		return nil
	}
	now := s.clock().UTC()
	members := make([]GroveMember, 0, len(groveIDs))
	for _, groveID := range groveIDs {
		if groveID == "" {
			continue
		}
		members = append(members, GroveMember{
			GroveID:   groveID,
			UserID:    userID,
			JoinedAt:  now,
			CreatedAt: now,
		})
	}
	if len(members) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&members).Error
	if err != nil {
		return fmt.Errorf("posts: join groves: %w", err)
	}
	return nil
}

// RecommendGroves returns active groves the user has not yet joined,
// alphabetically by name, capped at limit.
func (s *Service) RecommendGroves(ctx context.Context, userID string, limit int) ([]Grove, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		limit = maxRecommendationLimit
	}

	var groves []Grove
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)",
			s.db.Model(&GroveMember{}).Select("grove_id").Where("user_id = ?", userID)).
		Order("name ASC").
		Limit(limit).
		Find(&groves).Error
	if err != nil {
		return nil, fmt.Errorf("posts: recommend groves: %w", err)
	}
	if groves == nil {
		groves = []Grove{}
	}
	return groves, nil
}

// GrovesByIDs loads the named groves, skipping ids that do not exist.
func (s *Service) GrovesByIDs(ctx context.Context, groveIDs []string) ([]Grove, error) {
	filtered := make([]string, 0, len(groveIDs))
	for _, groveID := range groveIDs {
		if groveID != "" {
			filtered = append(filtered, groveID)
		}
	}
	if len(filtered) == 0 {
		return []Grove{}, nil
	}
	var groves []Grove
	err := s.db.WithContext(ctx).
		Where("id IN ?", filtered).
		Order("name ASC").
		Find(&groves).Error
	if err != nil {
		return nil, fmt.Errorf("posts: load groves: %w", err)
	}
	if groves == nil {
		groves = []Grove{}
	}
	return groves, nil
}
