// internal/app/store/alumni/store.go
package alumnistore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the alumni directory collection name.
const Collection = "alumni"

// TopCompanies bounds the company breakdown returned by Stats.
const TopCompanies = 10

// ErrNotFound is returned when no entry matches.
var ErrNotFound = errors.New("alumni not found")

// Filter narrows List and Count to active entries. Company, College and
// Search match case-insensitive substrings; Year matches exactly.
type Filter struct {
	Company string
	College string
	Year    string
	Search  string
	Limit   int64
	Offset  int64
}

// Changes is a partial update; nil fields are left as stored.
type Changes struct {
	Name             *string
	Email            *string
	CollegeName      *string
	GraduationYear   *string
	Degree           *string
	CurrentCompany   *string
	CurrentRole      *string
	Location         *string
	Bio              *string
	Expertise        *[]string
	SocialLinks      *models.SocialLinks
	InterviewProcess *models.InterviewProcess
	PhotoURL         *string
	IsActive         *bool
}

// Store manages alumni directory entries.
type Store struct {
	c *mongo.Collection
}

// New creates a new alumni Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a as a new active entry.
func (s *Store) Create(ctx context.Context, a models.Alumni) (*models.Alumni, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.IsActive = true
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Expertise == nil {
		a.Expertise = []string{}
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return nil, fmt.Errorf("insert alumni: %w", err)
	}
	return &a, nil
}

// GetActive loads an entry that has not been removed.
func (s *Store) GetActive(ctx context.Context, id primitive.ObjectID) (*models.Alumni, error) {
	var a models.Alumni
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (ch Changes) set() bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	for key, v := range map[string]*string{
		"name":            ch.Name,
		"email":           ch.Email,
		"college_name":    ch.CollegeName,
		"graduation_year": ch.GraduationYear,
		"degree":          ch.Degree,
		"current_company": ch.CurrentCompany,
		"current_role":    ch.CurrentRole,
		"location":        ch.Location,
		"bio":             ch.Bio,
		"photo_url":       ch.PhotoURL,
	} {
		if v != nil {
			set[key] = *v
		}
	}
	if ch.Expertise != nil {
		set["expertise"] = *ch.Expertise
	}
	if ch.SocialLinks != nil {
		set["social_links"] = *ch.SocialLinks
	}
	if ch.InterviewProcess != nil {
		set["interview_process"] = *ch.InterviewProcess
	}
	if ch.IsActive != nil {
		set["is_active"] = *ch.IsActive
	}
	return set
}

// Update applies ch to the entry with id, removed or not, and returns the
// stored result. Setting IsActive restores a removed entry.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, ch Changes) (*models.Alumni, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Alumni
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": ch.set()}, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update alumni: %w", err)
	}
	return &a, nil
}

// Deactivate removes an entry from the directory without deleting it.
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("deactivate alumni: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func containsFold(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func (f Filter) query() bson.M {
	q := bson.M{"is_active": true}
	if f.Company != "" {
		q["current_company"] = containsFold(f.Company)
	}
	if f.College != "" {
		q["college_name"] = containsFold(f.College)
	}
	if f.Year != "" {
		q["graduation_year"] = f.Year
	}
	if f.Search != "" {
		re := containsFold(f.Search)
		q["$or"] = []bson.M{
			{"name": re},
			{"current_role": re},
			{"expertise": re},
		}
	}
	return q
}

// List returns active entries matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Alumni, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(f.Offset)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Alumni{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of active entries matching f, ignoring paging.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// Stats summarises active entries: the total, the TopCompanies most
// common employers and a per-graduation-year count, newest year first.
func (s *Store) Stats(ctx context.Context) (models.AlumniStats, error) {
	active := bson.M{"$match": bson.M{"is_active": true}}
	stats := models.AlumniStats{TopCompanies: []models.CompanyCount{}, ByYear: []models.YearCount{}}

	total, err := s.c.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return stats, err
	}
	stats.Total = total

	companies := []bson.M{
		active,
		{"$group": bson.M{"_id": "$current_company", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$limit": TopCompanies},
	}
	if err := s.aggregate(ctx, companies, &stats.TopCompanies); err != nil {
		return stats, fmt.Errorf("company breakdown: %w", err)
	}

	years := []bson.M{
		active,
		{"$group": bson.M{"_id": "$graduation_year", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"_id": -1}},
	}
	if err := s.aggregate(ctx, years, &stats.ByYear); err != nil {
		return stats, fmt.Errorf("year breakdown: %w", err)
	}
	return stats, nil
}

func (s *Store) aggregate(ctx context.Context, pipeline []bson.M, out any) error {
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}
