// Package search turns the search box input into post filters.
//
// The input grammar is a single optional prefix:
//
//	^text        posts whose text starts with text
//	=text        posts whose text is exactly text
//	@user text   posts by user containing text
//	#slug text   posts in group slug containing text
//	text         posts containing text
//
// All matching is case-insensitive.
package search

import (
	"errors"
	"fmt"
	"strings"
	"yatube/internal/models"

	"gorm.io/gorm"
)

type Lookup string

const (
	Contains   Lookup = "icontains"
	StartsWith Lookup = "istartswith"
	Exact      Lookup = "iexact"
)

type Target int

const (
	AllPosts Target = iota
	AuthorPosts
	GroupPosts
)

type Query struct {
	Raw    string
	Target Target
	Name   string // username or group slug for scoped queries
	Lookup Lookup
	Term   string
}

func Construct(q string) Query {
	query := Query{Raw: q, Target: AllPosts, Lookup: Contains, Term: q}

	switch {
	case strings.HasPrefix(q, "^"):
		query.Lookup, query.Term = StartsWith, q[1:]
	case strings.HasPrefix(q, "="):
		query.Lookup, query.Term = Exact, q[1:]
	case strings.HasPrefix(q, "@"), strings.HasPrefix(q, "#"):
		fields := strings.Fields(q)
		query.Target = AuthorPosts
		if q[0] == '#' {
			query.Target = GroupPosts
		}
		query.Name = fields[0][1:]
		query.Term = strings.Join(fields[1:], " ")
	}
	return query
}

// Token is the scope as typed by the user, e.g. "@leo" or "#cats".
func (q Query) Token() string {
	switch q.Target {
	case AuthorPosts:
		return "@" + q.Name
	case GroupPosts:
		return "#" + q.Name
	}
	return ""
}

// Pattern is the LIKE pattern for the term, with wildcards in the term
// escaped by a backslash.
func (q Query) Pattern() string {
	term := escapeLike(q.Term)
	switch q.Lookup {
	case StartsWith:
		return term + "%"
	case Exact:
		return term
	}
	return "%" + term + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// TextScope filters posts by the term.
func (q Query) TextScope(tx *gorm.DB) *gorm.DB {
	return tx.Where(`LOWER(posts.text) LIKE LOWER(?) ESCAPE '\'`, q.Pattern())
}

// Plan is a resolved query: the scopes to apply to a posts query and the
// message shown above the results.
type Plan struct {
	Scopes  []func(*gorm.DB) *gorm.DB
	Message string
	Found   bool
}

// Plan resolves the author or group named by a scoped query. An unknown name
// is not an error: the plan comes back with Found false and a message.
func (q Query) Plan(tx *gorm.DB) (Plan, error) {
	message := `"` + q.Term + `"`

	switch q.Target {
	case AuthorPosts:
		var author models.User
		err := tx.Where("username = ?", q.Name).First(&author).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Plan{Message: "Author not found: " + q.Token()}, nil
		}
		if err != nil {
			return Plan{}, fmt.Errorf("find author %q: %w", q.Name, err)
		}
		return Plan{
			Scopes: []func(*gorm.DB) *gorm.DB{
				func(tx *gorm.DB) *gorm.DB { return tx.Where("posts.author_id = ?", author.ID) },
				q.TextScope,
			},
			Message: message + " in posts by " + q.Token(),
			Found:   true,
		}, nil

	case GroupPosts:
		var group models.Group
		err := tx.Where("slug = ?", q.Name).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Plan{Message: "Group not found: " + q.Token()}, nil
		}
		if err != nil {
			return Plan{}, fmt.Errorf("find group %q: %w", q.Name, err)
		}
		return Plan{
			Scopes: []func(*gorm.DB) *gorm.DB{
				func(tx *gorm.DB) *gorm.DB { return tx.Where("posts.group_id = ?", group.ID) },
				q.TextScope,
			},
			Message: message + " in posts from group " + q.Token(),
			Found:   true,
		}, nil
	}

	return Plan{
		Scopes:  []func(*gorm.DB) *gorm.DB{q.TextScope},
		Message: message,
		Found:   true,
	}, nil
}
