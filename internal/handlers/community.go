package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medibook-server/internal/middleware"
	"medibook-server/internal/models"
	"medibook-server/internal/utils"
)

// CommunityHandler serves the community board: doctors post, everyone reads.
type CommunityHandler struct {
	DB *gorm.DB
}

// NewCommunityHandler creates a new CommunityHandler.
func NewCommunityHandler(db *gorm.DB) *CommunityHandler {
	return &CommunityHandler{DB: db}
}

// CreatePostRequest represents the request body for a new post.
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CreatePost publishes a post authored by the authenticated doctor. Route
// middleware restricts this to the doctor role.
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreatePostRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	post := models.CommunityPost{
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.DB.Create(&post).Error; err != nil {
		utils.InternalServerError(c, "Failed to create post: "+err.Error())
		return
	}

	utils.Created(c, "Post created successfully", post)
}

// PostView is a community post with its author's public identity.
type PostView struct {
	models.CommunityPost
	Author models.UserSanitized `json:"author"`
}

// GetPosts lists all posts, newest first, with author identity attached.
func (h *CommunityHandler) GetPosts(c *gin.Context) {
	var posts []models.CommunityPost
	if err := h.DB.Preload("Author").Order("created_at desc").Find(&posts).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch posts: "+err.Error())
		return
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{CommunityPost: p, Author: p.Author.Sanitize()}
	}

	utils.Success(c, "Posts fetched successfully", views)
}
