package accountstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileUpdate carries the editable fields of an account. Nil fields are
// left unchanged. Callers normalize and validate values beforehand.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	SkillsWanted *[]string
	SkillsTaught *[]string
	Skills       *[]string
	Age          *int
	Gender       *string
	About        *string
	Bio          *string
	College      *string
	Year         *string
	SocialLinks  *models.SocialLinks
	PhotoURL     *string
}

// Empty reports whether the update sets nothing.
func (u ProfileUpdate) Empty() bool {
	return len(u.fields()) == 0
}

func (u ProfileUpdate) fields() bson.M {
	set := bson.M{}
	setIf(set, "first_name", u.FirstName)
	setIf(set, "last_name", u.LastName)
	setIf(set, "skills_wanted", u.SkillsWanted)
	setIf(set, "skills_taught", u.SkillsTaught)
	setIf(set, "skills", u.Skills)
	setIf(set, "age", u.Age)
	setIf(set, "gender", u.Gender)
	setIf(set, "about", u.About)
	setIf(set, "bio", u.Bio)
	setIf(set, "college", u.College)
	setIf(set, "year", u.Year)
	setIf(set, "social_links", u.SocialLinks)
	setIf(set, "photo_url", u.PhotoURL)
	return set
}

func setIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}

// UpdateProfile applies upd and returns the updated account.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.Account, error) {
	set := upd.fields()
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Account
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
