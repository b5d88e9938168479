package posts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sequenceIDProvider struct {
	next int
}

func (p *sequenceIDProvider) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("post-%04d", p.next), nil
}

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "posts.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(&Post{}, &LinkPreview{}, &PostLike{}, &PostComment{}, &Grove{}, &GroveMember{}, &UserFollow{})
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func mustService(t *testing.T, db *gorm.DB, clock func() time.Time) *Service {
	t.Helper()
	if clock == nil {
		clock = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	}
	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      clock,
		IDProvider: &sequenceIDProvider{},
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return service
}

func TestCreatePostValidatesContent(t *testing.T) {
	service := mustService(t, openTestDatabase(t), nil)

	if _, err := service.CreatePost(context.Background(), "user-1", CreatePostInput{}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	_, err := service.CreatePost(context.Background(), "user-1", CreatePostInput{
		Content: `check this <script>steal()</script>`,
	})
	if !errors.Is(err, ErrUnsafeContent) {
		t.Fatalf("expected ErrUnsafeContent, got %v", err)
	}
}

func TestCreatePostPersistsLinkPreview(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	title := "Visa guide"
	created, err := service.CreatePost(context.Background(), "user-1", CreatePostInput{
		Content: "found a great visa guide",
		LinkPreview: &LinkPreviewInput{
			URL:   "https://example.com/guide",
			Title: &title,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.LinkPreview == nil || created.LinkPreview.URL != "https://example.com/guide" {
		t.Fatalf("expected link preview attached, got %+v", created.LinkPreview)
	}

	var stored LinkPreview
	if err := db.Where("post_id = ?", created.ID).Take(&stored).Error; err != nil {
		t.Fatalf("failed to reload preview: %v", err)
	}
	if stored.Title == nil || *stored.Title != "Visa guide" {
		t.Fatalf("unexpected stored preview: %+v", stored)
	}
}

func TestFetchFeedOrdersNewestFirstAndCounts(t *testing.T) {
	db := openTestDatabase(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	service := mustService(t, db, func() time.Time { return current })

	first, err := service.CreatePost(context.Background(), "author-1", CreatePostInput{Content: "first"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	current = base.Add(time.Minute)
	second, err := service.CreatePost(context.Background(), "author-2", CreatePostInput{Content: "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	likes := []PostLike{
		{PostID: first.ID, UserID: "fan-1"},
		{PostID: first.ID, UserID: "fan-2"},
	}
	if err := db.Create(&likes).Error; err != nil {
		t.Fatalf("failed to seed likes: %v", err)
	}
	comment := PostComment{ID: "comment-1", PostID: second.ID, UserID: "fan-1", Content: "nice"}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}

	feed, err := service.FetchFeed(context.Background(), "reader-1", FeedQuery{Filter: FeedFilterAll})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 feed entries, got %d", len(feed))
	}
	if feed[0].ID != second.ID {
		t.Fatalf("expected newest post first, got %q", feed[0].ID)
	}
	if feed[1].LikeCount != 2 {
		t.Fatalf("expected 2 likes on first post, got %d", feed[1].LikeCount)
	}
	if feed[0].CommentCount != 1 {
		t.Fatalf("expected 1 comment on second post, got %d", feed[0].CommentCount)
	}
}

func TestFetchFeedUserFilterAndExclusion(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	if _, err := service.CreatePost(context.Background(), "user-1", CreatePostInput{Content: "mine"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CreatePost(context.Background(), "user-2", CreatePostInput{Content: "theirs"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mine, err := service.FetchFeed(context.Background(), "user-1", FeedQuery{Filter: FeedFilterUser})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != "user-1" {
		t.Fatalf("expected only own posts, got %+v", mine)
	}

	others, err := service.FetchFeed(context.Background(), "user-1", FeedQuery{
		Filter:             FeedFilterAll,
		ExcludeCurrentUser: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(others) != 1 || others[0].UserID != "user-2" {
		t.Fatalf("expected own posts excluded, got %+v", others)
	}
}

func TestFetchFeedFollowingFilter(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	if _, err := service.CreatePost(context.Background(), "followed", CreatePostInput{Content: "followed post"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CreatePost(context.Background(), "stranger", CreatePostInput{Content: "stranger post"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	follow := UserFollow{FollowerID: "reader-1", FolloweeID: "followed"}
	if err := db.Create(&follow).Error; err != nil {
		t.Fatalf("failed to seed follow: %v", err)
	}

	feed, err := service.FetchFeed(context.Background(), "reader-1", FeedQuery{Filter: FeedFilterFollowing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 1 || feed[0].UserID != "followed" {
		t.Fatalf("expected only followed authors, got %+v", feed)
	}
}

func TestFetchFeedMyGrovesFilter(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	grove := Grove{ID: "grove-1", Name: "Sydney Newcomers", IsActive: true}
	if err := db.Create(&grove).Error; err != nil {
		t.Fatalf("failed to seed grove: %v", err)
	}
	groveID := grove.ID
	if _, err := service.CreatePost(context.Background(), "author-1", CreatePostInput{Content: "grove post", GroveID: &groveID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CreatePost(context.Background(), "author-1", CreatePostInput{Content: "plain post"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.JoinGroves(context.Background(), "reader-1", []string{grove.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	feed, err := service.FetchFeed(context.Background(), "reader-1", FeedQuery{Filter: FeedFilterMyGroves})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 1 || feed[0].GroveID == nil || *feed[0].GroveID != grove.ID {
		t.Fatalf("expected only grove posts, got %+v", feed)
	}
}

func TestFetchFeedRejectsUnknownFilter(t *testing.T) {
	service := mustService(t, openTestDatabase(t), nil)

	if _, err := service.FetchFeed(context.Background(), "reader-1", FeedQuery{Filter: "trending"}); !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestFetchFeedPaginates(t *testing.T) {
	db := openTestDatabase(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	service := mustService(t, db, func() time.Time { return current })

	for index := 0; index < 5; index++ {
		current = base.Add(time.Duration(index) * time.Minute)
		if _, err := service.CreatePost(context.Background(), "author-1", CreatePostInput{
			Content: fmt.Sprintf("post %d", index),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	page, err := service.FetchFeed(context.Background(), "reader-1", FeedQuery{Filter: FeedFilterAll, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 entries on the page, got %d", len(page))
	}
	if page[0].Content != "post 2" || page[1].Content != "post 1" {
		t.Fatalf("unexpected page contents: %q, %q", page[0].Content, page[1].Content)
	}
}

func seedGroves(t *testing.T, db *gorm.DB, groves ...Grove) {
	t.Helper()
	for index := range groves {
		if err := db.Create(&groves[index]).Error; err != nil {
			t.Fatalf("failed to seed grove %q: %v", groves[index].ID, err)
		}
	}
}

func TestRecommendGrovesSkipsJoinedAndInactive(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	seedGroves(t, db,
		Grove{ID: "grove-1", Name: "Adelaide Arrivals", IsActive: true},
		Grove{ID: "grove-2", Name: "Brisbane Builders", IsActive: true},
		Grove{ID: "grove-3", Name: "Closed Circle", IsActive: false},
	)
	if err := service.JoinGroves(context.Background(), "user-1", []string{"grove-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recommended, err := service.RecommendGroves(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recommended) != 1 || recommended[0].ID != "grove-2" {
		t.Fatalf("expected only the unjoined active grove, got %+v", recommended)
	}
}

func TestRecommendGrovesAppliesLimit(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	for index := 0; index < 10; index++ {
		seedGroves(t, db, Grove{
			ID:       fmt.Sprintf("grove-%02d", index),
			Name:     fmt.Sprintf("Grove %02d", index),
			IsActive: true,
		})
	}

	recommended, err := service.RecommendGroves(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recommended) != 6 {
		t.Fatalf("expected default cap of 6 recommendations, got %d", len(recommended))
	}

	recommended, err = service.RecommendGroves(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recommended) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recommended))
	}
	if recommended[0].Name != "Grove 00" {
		t.Fatalf("expected alphabetical order, got %q first", recommended[0].Name)
	}
}

func TestRecommendGrovesRequiresUser(t *testing.T) {
	service := mustService(t, openTestDatabase(t), nil)
	if _, err := service.RecommendGroves(context.Background(), "", 0); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
}

func TestGrovesByIDsSkipsUnknownAndBlank(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	seedGroves(t, db,
		Grove{ID: "grove-1", Name: "Adelaide Arrivals", IsActive: true},
		Grove{ID: "grove-2", Name: "Brisbane Builders", IsActive: true},
	)

	groves, err := service.GrovesByIDs(context.Background(), []string{"grove-2", "", "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groves) != 1 || groves[0].ID != "grove-2" {
		t.Fatalf("expected only the known grove, got %+v", groves)
	}

	empty, err := service.GrovesByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty result for no ids, got %+v", empty)
	}
}

func TestJoinGrovesIgnoresDuplicates(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db, nil)

	if err := service.JoinGroves(context.Background(), "user-1", []string{"grove-1", "grove-2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.JoinGroves(context.Background(), "user-1", []string{"grove-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int64
	if err := db.Model(&GroveMember{}).Where("user_id = ?", "user-1").Count(&count).Error; err != nil {
		t.Fatalf("failed to count memberships: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 memberships, got %d", count)
	}
}
