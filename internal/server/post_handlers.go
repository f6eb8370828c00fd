package server

import (
	"newsdesk/internal/models"
	"newsdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	coverImageField    = "coverImage"
	galleryImagesField = "galleryImages"
)

// postFieldsRequest is the JSON body shape shared by create and update.
// Pointers distinguish "absent" from "supplied empty" for partial updates.
type postFieldsRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Category        *string `json:"category"`
	Language        *string `json:"language"`
	Author          *string `json:"author"`
	HTMLContent     *string `json:"htmlContent"`
	CoverImageLabel *string `json:"coverImageLabel"`
	Status          *string `json:"status"`
	PublishStatus   *string `json:"publishStatus"`
	ActiveStatus    *string `json:"activeStatus"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in, err := parseCreateInput(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	post, err := s.posts.Create(c.UserContext(), *in)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.posts.List(c.UserContext(), service.ListPostsInput{
		// Non-numeric page/limit input falls back to the default, never an error.
		Page:         c.QueryInt("page", 1),
		Limit:        c.QueryInt("limit", 10),
		Category:     c.Query("category"),
		Search:       c.Query("search"),
		ActiveStatus: c.Query("activeStatus"),
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.posts.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	in, err := parseUpdateInput(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	post, err := s.posts.Update(c.UserContext(), c.Params("id"), *in)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	post, err := s.posts.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted",
		"post":    post,
	})
}

// DeleteAllPosts handles DELETE /api/posts
func (s *Server) DeleteAllPosts(c *fiber.Ctx) error {
	if _, err := s.posts.DeleteAll(c.UserContext()); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "All posts deleted",
	})
}

func parseCreateInput(c *fiber.Ctx) (*service.CreatePostInput, error) {
	var in service.CreatePostInput

	if isJSONRequest(c) {
		var req postFieldsRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		in = service.CreatePostInput{
			Title:           deref(req.Title),
			Slug:            deref(req.Slug),
			Category:        deref(req.Category),
			Language:        deref(req.Language),
			Author:          deref(req.Author),
			HTMLContent:     deref(req.HTMLContent),
			CoverImageLabel: deref(req.CoverImageLabel),
			PublishStatus:   deref(req.PublishStatus),
			ActiveStatus:    deref(req.ActiveStatus),
		}
		return &in, nil
	}

	fields := formFields(c)
	in = service.CreatePostInput{
		Title:           deref(fieldPtr(fields, "title")),
		Slug:            deref(fieldPtr(fields, "slug")),
		Category:        deref(fieldPtr(fields, "category")),
		Language:        deref(fieldPtr(fields, "language")),
		Author:          deref(fieldPtr(fields, "author")),
		HTMLContent:     deref(fieldPtr(fields, "htmlContent")),
		CoverImageLabel: deref(fieldPtr(fields, "coverImageLabel")),
		PublishStatus:   deref(fieldPtr(fields, "publishStatus")),
		ActiveStatus:    deref(fieldPtr(fields, "activeStatus")),
	}

	covers, err := fileUploads(c, coverImageField)
	if err != nil {
		return nil, err
	}
	if len(covers) > 1 {
		return nil, models.NewUploadError("Only one cover image is allowed")
	}
	if len(covers) == 1 {
		in.CoverImage = &covers[0]
	}

	gallery, err := fileUploads(c, galleryImagesField)
	if err != nil {
		return nil, err
	}
	in.GalleryImages = gallery

	return &in, nil
}

func parseUpdateInput(c *fiber.Ctx) (*service.UpdatePostInput, error) {
	var in service.UpdatePostInput

	if isJSONRequest(c) {
		var req postFieldsRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		in = service.UpdatePostInput{
			Title:           req.Title,
			Slug:            req.Slug,
			Category:        req.Category,
			Language:        req.Language,
			Author:          req.Author,
			HTMLContent:     req.HTMLContent,
			CoverImageLabel: req.CoverImageLabel,
			Status:          req.Status,
			PublishStatus:   req.PublishStatus,
			ActiveStatus:    req.ActiveStatus,
		}
		return &in, nil
	}

	fields := formFields(c)
	in = service.UpdatePostInput{
		Title:           fieldPtr(fields, "title"),
		Slug:            fieldPtr(fields, "slug"),
		Category:        fieldPtr(fields, "category"),
		Language:        fieldPtr(fields, "language"),
		Author:          fieldPtr(fields, "author"),
		HTMLContent:     fieldPtr(fields, "htmlContent"),
		CoverImageLabel: fieldPtr(fields, "coverImageLabel"),
		Status:          fieldPtr(fields, "status"),
		PublishStatus:   fieldPtr(fields, "publishStatus"),
		ActiveStatus:    fieldPtr(fields, "activeStatus"),
	}

	covers, err := fileUploads(c, coverImageField)
	if err != nil {
		return nil, err
	}
	if len(covers) > 1 {
		return nil, models.NewUploadError("Only one cover image is allowed")
	}
	if len(covers) == 1 {
		in.CoverImage = &covers[0]
	}

	gallery, err := fileUploads(c, galleryImagesField)
	if err != nil {
		return nil, err
	}
	in.GalleryImages = gallery

	return &in, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
