package handler

import (
	"time"

	"github.com/classless/blog-api/internal/model"
)

// Response shapes.  The repository models carry nullable columns and
// the password hash; the views are what clients actually see.

type userView struct {
	ID          uint64            `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Role        string            `json:"role"`
	FirstName   string            `json:"firstName,omitempty"`
	LastName    string            `json:"lastName,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func newUserView(u model.User) userView {
	links := map[string]string{}
	for key, v := range map[string]string{
		"website":   u.SocialLinks.Website.String,
		"facebook":  u.SocialLinks.Facebook.String,
		"instagram": u.SocialLinks.Instagram.String,
		"x":         u.SocialLinks.X.String,
		"youtube":   u.SocialLinks.YouTube.String,
	} {
		if v != "" {
			links[key] = v
		}
	}
	if len(links) == 0 {
		links = nil
	}
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		FirstName:   u.FirstName.String,
		LastName:    u.LastName.String,
		SocialLinks: links,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type blogView struct {
	ID            uint64    `json:"id"`
	AuthorID      uint64    `json:"authorId"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Banner        string    `json:"banner,omitempty"`
	Status        string    `json:"status"`
	LikesCount    uint64    `json:"likesCount"`
	CommentsCount uint64    `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newBlogView(b model.Blog) blogView {
	return blogView{
		ID:            b.ID,
		AuthorID:      b.AuthorID,
		Title:         b.Title,
		Slug:          b.Slug,
		Content:       b.Content,
		Banner:        b.BannerURL.String,
		Status:        b.Status,
		LikesCount:    b.LikesCount,
		CommentsCount: b.CommentsCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func newBlogViews(bs []model.Blog) []blogView {
	out := make([]blogView, 0, len(bs))
	for _, b := range bs {
		out = append(out, newBlogView(b))
	}
	return out
}

type commentView struct {
	ID        uint64    `json:"id"`
	BlogID    uint64    `json:"blogId"`
	UserID    uint64    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCommentView(cm model.Comment) commentView {
	return commentView{ID: cm.ID, BlogID: cm.BlogID, UserID: cm.UserID, Content: cm.Content, CreatedAt: cm.CreatedAt}
}
