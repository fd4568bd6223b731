// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditRetention matches audit.Retention; kept here as seconds for the TTL
// index so this package does not depend on stores.
const AuditRetention int32 = 90 * 24 * 60 * 60

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureAccounts(ctx, db); err != nil {
		problems = append(problems, "accounts: "+err.Error())
	}
	if err := ensurePendingSignups(ctx, db); err != nil {
		problems = append(problems, "pending_signups: "+err.Error())
	}
	if err := ensureConnectionRequests(ctx, db); err != nil {
		problems = append(problems, "connection_requests: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}
	if err := ensureAlumni(ctx, db); err != nil {
		problems = append(problems, "alumni: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

// wanted is the option subset we reconcile on.
type wanted struct {
	name   string
	unique *bool
	ttl    *int32
	sig    string
}

func wantedOf(m mongo.IndexModel) wanted {
	w := wanted{sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			w.name = *m.Options.Name
		}
		w.unique = m.Options.Unique
		w.ttl = m.Options.ExpireAfterSeconds
	}
	return w
}

func (w wanted) isUnique() bool { return w.unique != nil && *w.unique }

func (w wanted) matches(ex existingIndex) bool {
	return sameBoolPtr(w.unique, ex.Unique) && sameInt32Ptr(w.ttl, ex.ExpireAfterSeconds)
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func sameInt32Ptr(a, b *int32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// duplicateHelp points operators at the aggregation that finds offending
// documents when a unique index cannot be built.
func duplicateHelp(coll string, sig string) string {
	field := strings.SplitN(sig, ":", 2)[0]
	return fmt.Sprintf(" (duplicates exist on %s.%s. Example finder: "+
		`db.%s.aggregate([{ $group: { _id: "$%s", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }]))`,
		coll, field, coll, field)
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// recreate drops ex and creates m in its place.
func recreate(ctx context.Context, coll *mongo.Collection, ex existingIndex, m mongo.IndexModel, w wanted) error {
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		zap.L().Warn("drop existing index failed",
			zap.String("collection", coll.Name()),
			zap.String("name", ex.Name),
			zap.String("keys", w.sig),
			zap.Error(err))
		return fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), w.name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if isDuplicateKeyErr(err) && w.isUnique() {
			return fmt.Errorf("%s(%s): cannot create unique index%s", coll.Name(), w.name, duplicateHelp(coll.Name(), w.sig))
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), w.name, err)
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		w := wantedOf(m)
		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", w.name),
			zap.String("keys", w.sig),
			zap.Bool("unique", w.isUnique()))

		if ex, ok := listExisting(ctx, coll)[w.sig]; ok {
			switch {
			case w.matches(ex) && (w.name == "" || ex.Name == w.name):
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", w.sig),
					zap.String("took", time.Since(start).String()))
			default:
				// Name or options drifted (e.g. upgrading to unique, TTL
				// changed). Drop & recreate.
				if err := recreate(ctx, coll, ex, m, w); err != nil {
					errs = append(errs, err.Error())
					continue
				}
				zap.L().Info("index dropped and recreated",
					zap.String("collection", coll.Name()),
					zap.String("from", ex.Name),
					zap.String("name", w.name),
					zap.String("keys", w.sig),
					zap.String("took", time.Since(start).String()))
			}
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", w.name),
				zap.String("created_name", created),
				zap.String("keys", w.sig),
				zap.Bool("unique", w.isUnique()),
				zap.String("took", time.Since(start).String()))
			continue
		}

		if isOptionsConflictErr(err) {
			// Raced with another instance or a vendor reported the keys under
			// a different signature; reconcile against a fresh listing.
			if ex, ok := listExisting(ctx, coll)[w.sig]; ok {
				if w.matches(ex) {
					zap.L().Info("reusing existing index (post-conflict)",
						zap.String("collection", coll.Name()),
						zap.String("name", ex.Name),
						zap.String("keys", w.sig))
					continue
				}
				if rerr := recreate(ctx, coll, ex, m, w); rerr != nil {
					errs = append(errs, rerr.Error())
				}
				continue
			}
		}

		if isDuplicateKeyErr(err) && w.isUnique() {
			errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index%s", coll.Name(), w.name, duplicateHelp(coll.Name(), w.sig)))
			continue
		}
		zap.L().Warn("index ensure failed",
			zap.String("collection", coll.Name()),
			zap.String("name", w.name),
			zap.String("keys", w.sig),
			zap.String("took", time.Since(start).String()),
			zap.Error(err))
		errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), w.name, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureAccounts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("accounts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// 1) Email must be unique across all accounts
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_email"),
		},
		// 2) Feed and candidate pool: verified accounts in _id order (keyset paging)
		{
			Keys:    bson.D{{Key: "email_verified", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_accounts_verified__id"),
		},
		// 3) Server-side skill prefilter for the candidate pool
		{
			Keys:    bson.D{{Key: "skills_taught", Value: 1}},
			Options: options.Index().SetName("idx_accounts_skills_taught"),
		},
		{
			Keys:    bson.D{{Key: "skills_wanted", Value: 1}},
			Options: options.Index().SetName("idx_accounts_skills_wanted"),
		},
		// 4) Reset token lookup; sparse since most accounts have none
		{
			Keys:    bson.D{{Key: "reset_token_hash", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_accounts_reset_token"),
		},
	})
}

func ensurePendingSignups(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("pending_signups")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One pending record per email
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_pending_email"),
		},
		// Evict as soon as the passcode window closes
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_pending_expires_at"),
		},
	})
}

func ensureConnectionRequests(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("connection_requests")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one request per unordered pair
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_connreq_pair"),
		},
		// Received list: pending requests addressed to a user, newest first
		{
			Keys: bson.D{
				{Key: "to_user_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_connreq_to_status_created"),
		},
		// Connections and exclusion sets ($or over both sides)
		{
			Keys:    bson.D{{Key: "from_user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_connreq_from_status"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Time range queries (most recent first) and retention
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(AuditRetention).SetName("ttl_audit_timestamp"),
		},
		// Query by user
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_user_time"),
		},
		// Query by event type
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_time"),
		},
	})
}

func ensureAlumni(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("alumni")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Directory listing: active entries, newest first
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_alumni_active_created"),
		},
		// Exact graduation year filter and the per-year breakdown
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "graduation_year", Value: -1}},
			Options: options.Index().SetName("idx_alumni_active_year"),
		},
	})
}
