package posts

import "time"

// Post is a user-authored feed entry.
type Post struct {
	ID        string     `gorm:"column:id;primaryKey" json:"id"`
	UserID    string     `gorm:"column:user_id;index:idx_posts_user" json:"userId"`
	Content   string     `gorm:"column:content" json:"content"`
	ImageURL  *string    `gorm:"column:image_url" json:"imageUrl,omitempty"`
	GroveID   *string    `gorm:"column:grove_id;index:idx_posts_grove" json:"groveId,omitempty"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index:idx_posts_deleted" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at;index:idx_posts_created" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName names the backing table for gorm.
func (Post) TableName() string {
	return "posts"
}

// LinkPreview is resolved link metadata attached to a post.
type LinkPreview struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	PostID      string    `gorm:"column:post_id;index:idx_link_previews_post" json:"postId"`
	URL         string    `gorm:"column:url" json:"url"`
	Title       *string   `gorm:"column:title" json:"title,omitempty"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	ImageURL    *string   `gorm:"column:image_url" json:"imageUrl,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName names the backing table for gorm.
func (LinkPreview) TableName() string {
	return "link_previews"
}

// PostLike marks one user's like on a post.
type PostLike struct {
	PostID    string    `gorm:"column:post_id;primaryKey" json:"postId"`
	UserID    string    `gorm:"column:user_id;primaryKey" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName names the backing table for gorm.
func (PostLike) TableName() string {
	return "post_likes"
}

// PostComment is a user comment on a post.
type PostComment struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	PostID    string    `gorm:"column:post_id;index:idx_post_comments_post" json:"postId"`
	UserID    string    `gorm:"column:user_id" json:"userId"`
	Content   string    `gorm:"column:content" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName names the backing table for gorm.
func (PostComment) TableName() string {
	return "post_comments"
}

// Grove is a community group users can join and post into.
type Grove struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name" json:"name"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName names the backing table for gorm.
func (Grove) TableName() string {
	return "groves"
}

// GroveMember joins a user to a grove.
type GroveMember struct {
	GroveID   string    `gorm:"column:grove_id;primaryKey" json:"groveId"`
	UserID    string    `gorm:"column:user_id;primaryKey" json:"userId"`
	JoinedAt  time.Time `gorm:"column:joined_at" json:"joinedAt"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName names the backing table for gorm.
func (GroveMember) TableName() string {
	return "grove_members"
}

// UserFollow records one user following another.
type UserFollow struct {
	FollowerID string    `gorm:"column:follower_id;primaryKey" json:"followerId"`
	FolloweeID string    `gorm:"column:followee_id;primaryKey" json:"followeeId"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName names the backing table for gorm.
func (UserFollow) TableName() string {
	return "user_follows"
}
