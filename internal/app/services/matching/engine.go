// Package matching ranks peers by how well their skills complement the
// viewer's: what the viewer wants to learn against what the peer teaches,
// and the reverse.
package matching

import (
	"sort"

	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/skills"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultLimit caps ComputeMatches results.
const DefaultLimit = 50

// Match is one peer's match card.
type Match struct {
	Peer models.PublicProfile `json:"peer"`
	// CommonLearn holds the peer's taught skills the viewer wants, in the
	// peer's spelling.
	CommonLearn []string `json:"common_learn"`
	// CommonTeach holds the peer's wanted skills the viewer teaches.
	CommonTeach      []string `json:"common_teach"`
	CanLearnFromPeer int      `json:"can_learn_from_peer"`
	CanTeachToPeer   int      `json:"can_teach_to_peer"`
	MatchScore       int      `json:"match_score"`
}

// Engine computes matches. It holds no state besides the result cap and is
// safe for concurrent use.
type Engine struct {
	Limit int
}

// NewEngine returns an Engine capped at limit (DefaultLimit when <= 0).
func NewEngine(limit int) Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Engine{Limit: limit}
}

// viewerKeys are the viewer's skill key sets, built once per computation.
type viewerKeys struct {
	wanted map[string]struct{}
	taught map[string]struct{}
}

func keysOf(viewer *models.Account) viewerKeys {
	return viewerKeys{
		wanted: skills.Keys(viewer.SkillsWanted),
		taught: skills.Keys(viewer.SkillsTaught),
	}
}

func (k viewerKeys) score(candidate *models.Account) Match {
	learn := skills.Intersect(candidate.SkillsTaught, k.wanted)
	teach := skills.Intersect(candidate.SkillsWanted, k.taught)
	return Match{
		Peer:             candidate.Public(),
		CommonLearn:      learn,
		CommonTeach:      teach,
		CanLearnFromPeer: len(learn),
		CanTeachToPeer:   len(teach),
		MatchScore:       len(learn) + len(teach),
	}
}

// ComputeMatches scores every eligible candidate in pool against viewer and
// returns those with a positive score, best first. Candidates that are the
// viewer, unverified, or listed in excluded are skipped. Ties keep pool
// order.
func (e Engine) ComputeMatches(viewer *models.Account, pool []models.Account, excluded map[primitive.ObjectID]struct{}) []Match {
	out := []Match{}
	if viewer == nil {
		return out
	}
	k := keysOf(viewer)
	for i := range pool {
		c := &pool[i]
		if c.ID == viewer.ID || !c.EmailVerified {
			continue
		}
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		m := k.score(c)
		if m.MatchScore == 0 {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})

	limit := e.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ComputeSingleMatch returns the full match card for one candidate, even
// when nothing overlaps.
func (e Engine) ComputeSingleMatch(viewer, candidate *models.Account) (Match, error) {
	if candidate == nil || !candidate.EmailVerified {
		return Match{}, apperr.NotFound("User not found")
	}
	if viewer == nil {
		return Match{}, apperr.NotFound("Account not found")
	}
	return keysOf(viewer).score(candidate), nil
}
