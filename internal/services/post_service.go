// post_service.go
//
// Listing reads and writes. Mutations run inside a transaction with the
// ownership check; the viewer projection never writes anything.

package services

import (
	"encoding/json"
	"errors"

	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/models"
	"github.com/estately/estately/internal/types"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var validate = validator.New()

// PostFilter narrows a listing query. Nil/empty fields are not applied.
type PostFilter struct {
	City     string
	Type     string
	Property string
	Bedroom  *int
	MinPrice *uint64
	MaxPrice *uint64
}

// ListPosts returns posts matching the filter.
func ListPosts(db *gorm.DB, filter PostFilter) ([]models.Post, error) {
	query := db.Model(&models.Post{})

	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Property != "" {
		query = query.Where("property = ?", filter.Property)
	}
	if filter.Bedroom != nil {
		query = query.Where("bedroom = ?", *filter.Bedroom)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var posts []models.Post
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, storeFailure("failed to list posts", err)
	}

	return posts, nil
}

// PostResponse is a post with its detail and the owner's public profile.
type PostResponse struct {
	models.Post
	User Profile `json:"user"`
}

// GetPost loads a post with its detail and owner profile.
func GetPost(db *gorm.DB, postID string) (*PostResponse, error) {
	var post models.Post
	if err := db.Preload("Detail").Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("post not found")
		}
		return nil, storeFailure("failed to load post", err)
	}

	resp := &PostResponse{Post: post}

	var owner models.User
	if err := db.Select("id", "username", "avatar").
		Where("id = ?", post.UserID).
		First(&owner).Error; err == nil {
		resp.User = Profile{ID: owner.ID, Username: owner.Username, Avatar: owner.Avatar}
	}

	return resp, nil
}

// PostView is the actor-relative projection of a post. IsSaved is derived
// at read time and never persisted.
type PostView struct {
	*PostResponse
	IsSaved bool `json:"isSaved"`
}

// AttachViewerContext augments a post with actor-relative fields.
// No credential: the anonymous view, IsSaved false, no error. An invalid
// credential is a hard InvalidCredential failure, never a silent
// anonymous fallback. Pure read; stored state is untouched.
func AttachViewerContext(db *gorm.DB, mgr *auth.Manager, post *PostResponse, token string) (*PostView, error) {
	view := &PostView{PostResponse: post}

	ident, err := ResolveCredential(mgr, token)
	if err != nil {
		return nil, err
	}
	if !ident.Authenticated() {
		return view, nil
	}

	var count int64
	if err := db.Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id = ?", ident.ActorID, post.ID).
		Count(&count).Error; err != nil {
		return nil, storeFailure("failed to check saved state", err)
	}
	view.IsSaved = count > 0

	return view, nil
}

// CreatePostInput mirrors the client body: the post fields plus the
// detail created together with it.
type CreatePostInput struct {
	Title     string           `json:"title" validate:"required"`
	Price     types.FlexUint64 `json:"price" validate:"required"`
	Images    []string         `json:"images"`
	Address   string           `json:"address"`
	City      string           `json:"city" validate:"required"`
	Bedroom   int              `json:"bedroom" validate:"gte=0"`
	Bathroom  int              `json:"bathroom" validate:"gte=0"`
	Latitude  string           `json:"latitude"`
	Longitude string           `json:"longitude"`
	Type      string           `json:"type" validate:"required,oneof=buy rent"`
	Property  string           `json:"property" validate:"required,oneof=apartment house condo land"`

	Detail PostDetailInput `json:"postDetail"`
}

// PostDetailInput holds the long-form fields supplied at creation.
type PostDetailInput struct {
	Description string `json:"desc"`
	Utilities   string `json:"utilities"`
	Pet         string `json:"pet"`
	Income      string `json:"income"`
	Size        int    `json:"size" validate:"gte=0"`
	School      int    `json:"school" validate:"gte=0"`
	Bus         int    `json:"bus" validate:"gte=0"`
	Restaurant  int    `json:"restaurant" validate:"gte=0"`
}

// CreatePost creates a post and its detail in one transaction, owned by
// the acting user.
func CreatePost(db *gorm.DB, actorID string, input CreatePostInput) (*models.Post, error) {
	if err := validate.Struct(input); err != nil {
		return nil, types.InvalidInput(err.Error())
	}

	images, err := json.Marshal(input.Images)
	if err != nil {
		return nil, types.InvalidInput("invalid images list")
	}

	post := models.Post{
		UserID:    actorID,
		Title:     input.Title,
		Price:     input.Price.Uint64(),
		Images:    images,
		Address:   input.Address,
		City:      input.City,
		Bedroom:   input.Bedroom,
		Bathroom:  input.Bathroom,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Type:      input.Type,
		Property:  input.Property,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return storeFailure("failed to create post", err)
		}

		detail := models.PostDetail{
			PostID:      post.ID,
			Description: input.Detail.Description,
			Utilities:   input.Detail.Utilities,
			Pet:         input.Detail.Pet,
			Income:      input.Detail.Income,
			Size:        input.Detail.Size,
			School:      input.Detail.School,
			Bus:         input.Detail.Bus,
			Restaurant:  input.Detail.Restaurant,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return storeFailure("failed to create post detail", err)
		}
		post.Detail = &detail

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// PostUpdate is the explicit partial update: one optional slot per
// mutable field. A present slot overwrites; an absent slot leaves the
// stored value untouched. The owner field has no slot on purpose.
type PostUpdate struct {
	Title     *string           `json:"title"`
	Price     *types.FlexUint64 `json:"price"`
	Images    *[]string         `json:"images"`
	Address   *string           `json:"address"`
	City      *string           `json:"city"`
	Bedroom   *int              `json:"bedroom"`
	Bathroom  *int              `json:"bathroom"`
	Latitude  *string           `json:"latitude"`
	Longitude *string           `json:"longitude"`
	Type      *string           `json:"type"`
	Property  *string           `json:"property"`

	Detail *PostDetailUpdate `json:"postDetail"`
}

// PostDetailUpdate carries the optional detail slots.
type PostDetailUpdate struct {
	Description *string `json:"desc"`
	Utilities   *string `json:"utilities"`
	Pet         *string `json:"pet"`
	Income      *string `json:"income"`
	Size        *int    `json:"size"`
	School      *int    `json:"school"`
	Bus         *int    `json:"bus"`
	Restaurant  *int    `json:"restaurant"`
}

func (u PostUpdate) changes() (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Price != nil {
		changes["price"] = u.Price.Uint64()
	}
	if u.Images != nil {
		images, err := json.Marshal(*u.Images)
		if err != nil {
			return nil, types.InvalidInput("invalid images list")
		}
		changes["images"] = images
	}
	if u.Address != nil {
		changes["address"] = *u.Address
	}
	if u.City != nil {
		changes["city"] = *u.City
	}
	if u.Bedroom != nil {
		changes["bedroom"] = *u.Bedroom
	}
	if u.Bathroom != nil {
		changes["bathroom"] = *u.Bathroom
	}
	if u.Latitude != nil {
		changes["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		changes["longitude"] = *u.Longitude
	}
	if u.Type != nil {
		changes["type"] = *u.Type
	}
	if u.Property != nil {
		changes["property"] = *u.Property
	}
	return changes, nil
}

func (u PostDetailUpdate) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.Utilities != nil {
		changes["utilities"] = *u.Utilities
	}
	if u.Pet != nil {
		changes["pet"] = *u.Pet
	}
	if u.Income != nil {
		changes["income"] = *u.Income
	}
	if u.Size != nil {
		changes["size"] = *u.Size
	}
	if u.School != nil {
		changes["school"] = *u.School
	}
	if u.Bus != nil {
		changes["bus"] = *u.Bus
	}
	if u.Restaurant != nil {
		changes["restaurant"] = *u.Restaurant
	}
	return changes
}

// UpdatePost applies a partial update to a post the actor owns. The
// ownership check and the write share one transaction.
func UpdatePost(db *gorm.DB, actorID, postID string, update PostUpdate) (*models.Post, error) {
	var post models.Post

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", postID).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("post not found")
			}
			return storeFailure("failed to load post", err)
		}

		if err := RequireOwner(actorID, post.UserID); err != nil {
			return err
		}

		changes, err := update.changes()
		if err != nil {
			return err
		}
		if len(changes) > 0 {
			if err := tx.Model(&post).Updates(changes).Error; err != nil {
				return storeFailure("failed to update post", err)
			}
		}

		if update.Detail != nil {
			detailChanges := update.Detail.changes()
			if len(detailChanges) > 0 {
				if err := tx.Model(&models.PostDetail{}).
					Where("post_id = ?", postID).
					Updates(detailChanges).Error; err != nil {
					return storeFailure("failed to update post detail", err)
				}
			}
		}

		return tx.Preload("Detail").Where("id = ?", postID).First(&post).Error
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// ToggleSavedPost flips the bookmark pair for (actor, post). Returns the
// resulting saved state. The referenced post must exist.
func ToggleSavedPost(db *gorm.DB, actorID, postID string) (bool, error) {
	var saved bool

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return storeFailure("failed to look up post", err)
		}
		if count == 0 {
			return types.NotFound("post not found")
		}

		var existing models.SavedPost
		err := tx.Where("user_id = ? AND post_id = ?", actorID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return storeFailure("failed to remove saved post", err)
			}
			saved = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := models.SavedPost{UserID: actorID, PostID: postID}
			if err := tx.Create(&record).Error; err != nil {
				return storeFailure("failed to save post", err)
			}
			saved = true
		default:
			return storeFailure("failed to look up saved post", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return saved, nil
}
