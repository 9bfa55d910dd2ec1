package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

func activeItem(a Audience, match MatchMode) Item {
	return Item{Audience: a, IsActive: true, Match: match}
}

func TestAdmin_AlwaysAllowed(t *testing.T) {
	admin := Admin{}

	items := []Item{
		activeItem(Audience{}, MatchAny),
		activeItem(Audience{Universities: []string{"UNILAG"}}, MatchAny),
		{Audience: Audience{Levels: []string{"300"}}, IsActive: false, Match: MatchAll},
	}

	for _, item := range items {
		assert.True(t, admin.CanAccess(item, OpView))
		assert.True(t, admin.CanAccess(item, OpManage))
	}
}

func TestPublicItem_VisibleToEveryRole(t *testing.T) {
	item := activeItem(Audience{}, MatchAny)

	principals := []Principal{
		Admin{},
		CategoryAdmin{Category: user.CategoryWAEC},
		SubAdmin{Scope: user.Scope{}},
		Student{Profile: user.Profile{}}, // incomplete profile
	}

	for _, p := range principals {
		assert.True(t, p.CanAccess(item, OpView), "role %s must see public items", p.Role())
	}
}

func TestStudent_IncompleteProfileDenied(t *testing.T) {
	// Profile has a matching university but the faculty is unset: any
	// populated audience field on the item must deny the whole request.
	st := Student{Profile: user.Profile{University: "UNILAG"}}
	item := activeItem(Audience{Universities: []string{"UNILAG"}}, MatchAny)

	assert.False(t, st.CanAccess(item, OpView))
}

func TestStudent_MatchingIsStrictAND(t *testing.T) {
	profile := user.Profile{
		University: "UNILAG",
		Faculty:    "Science",
		Department: "Physics",
		Level:      "300",
	}
	st := Student{Profile: profile}

	tests := []struct {
		name     string
		audience Audience
		want     bool
	}{
		{
			name:     "all populated fields match",
			audience: Audience{Universities: []string{"UNILAG"}, Levels: []string{"300"}},
			want:     true,
		},
		{
			name:     "one populated field mismatches",
			audience: Audience{Universities: []string{"UNILAG"}, Faculties: []string{"Law"}},
			want:     false,
		},
		{
			name:     "unpopulated fields do not restrict",
			audience: Audience{Departments: []string{"Physics"}},
			want:     true,
		},
		{
			name:     "every field populated and matching",
			audience: Audience{Universities: []string{"UNILAG"}, Faculties: []string{"Science"}, Departments: []string{"Physics"}, Levels: []string{"300"}},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, st.CanAccess(activeItem(tt.audience, MatchAny), OpView))
		})
	}
}

func TestStudent_NeverManages(t *testing.T) {
	st := Student{Profile: user.Profile{
		University: "UNILAG", Faculty: "Science", Department: "Physics", Level: "300",
	}}
	assert.False(t, st.CanAccess(activeItem(Audience{}, MatchAny), OpManage))
}

func TestStudent_InactiveItemHidden(t *testing.T) {
	st := Student{Profile: user.Profile{
		University: "UNILAG", Faculty: "Science", Department: "Physics", Level: "300",
	}}
	item := Item{Audience: Audience{Universities: []string{"UNILAG"}}, IsActive: false, Match: MatchAny}
	assert.False(t, st.CanAccess(item, OpView))
}

func TestSubAdmin_ORMatchOnCourses(t *testing.T) {
	// A single intersecting field is enough under MatchAny, even when
	// another populated field does not intersect the scope at all.
	sub := SubAdmin{Scope: user.Scope{Universities: []string{"X"}}}

	tests := []struct {
		name     string
		audience Audience
		want     bool
	}{
		{
			name:     "single matching field",
			audience: Audience{Universities: []string{"X"}},
			want:     true,
		},
		{
			name:     "matching field plus unmatched field still allows",
			audience: Audience{Universities: []string{"X"}, Faculties: []string{"Law"}},
			want:     true,
		},
		{
			name:     "no intersecting field",
			audience: Audience{Faculties: []string{"Law"}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sub.CanAccess(activeItem(tt.audience, MatchAny), OpManage))
		})
	}
}

// Resource folders historically use the stricter AND rule while every other
// content type uses OR. Both call sites are pinned here so a refactor cannot
// silently unify them.
func TestSubAdmin_MatchModeDivergencePinned(t *testing.T) {
	sub := SubAdmin{Scope: user.Scope{Universities: []string{"X"}}}
	audience := Audience{Universities: []string{"X"}, Faculties: []string{"Law"}}

	assert.True(t, sub.CanAccess(activeItem(audience, MatchAny), OpManage),
		"course-style OR match must allow on one intersecting field")
	assert.False(t, sub.CanAccess(activeItem(audience, MatchAll), OpManage),
		"folder-style AND match must deny when any populated field misses")
}

func TestSubAdmin_ViewEqualsManage(t *testing.T) {
	sub := SubAdmin{Scope: user.Scope{Departments: []string{"Physics"}}}
	item := activeItem(Audience{Departments: []string{"Physics"}}, MatchAny)

	assert.Equal(t, sub.CanAccess(item, OpView), sub.CanAccess(item, OpManage))
}

func TestCategoryAdmin_UnrestrictedByDefault(t *testing.T) {
	ca := CategoryAdmin{Category: user.CategoryWAEC}

	jambItem := Item{Audience: Audience{Universities: []string{"X"}}, IsActive: true, Match: MatchAny, Category: user.CategoryJAMB}
	assert.True(t, ca.CanAccess(jambItem, OpManage))
	assert.True(t, ca.CanAccess(jambItem, OpView))
}

func TestCategoryAdmin_RestrictedByFlag(t *testing.T) {
	ca := CategoryAdmin{Category: user.CategoryWAEC, Restricted: true}

	waecItem := Item{IsActive: true, Match: MatchAny, Category: user.CategoryWAEC}
	jambItem := Item{IsActive: true, Match: MatchAny, Category: user.CategoryJAMB}
	untagged := Item{IsActive: true, Match: MatchAny}

	assert.True(t, ca.CanAccess(waecItem, OpManage))
	assert.False(t, ca.CanAccess(jambItem, OpManage))
	assert.True(t, ca.CanAccess(untagged, OpManage))
}

func TestPolicy_PrincipalFor(t *testing.T) {
	policy := Policy{}

	tests := []struct {
		role user.Role
		want user.Role
	}{
		{user.RoleAdmin, user.RoleAdmin},
		{user.RoleCategoryAdmin, user.RoleCategoryAdmin},
		{user.RoleSubAdmin, user.RoleSubAdmin},
		{user.RoleStudent, user.RoleStudent},
	}

	for _, tt := range tests {
		u := &user.User{Role: tt.role, Category: user.CategoryWAEC}
		if tt.role != user.RoleCategoryAdmin {
			u.Category = user.CategoryNone
		}
		p := policy.PrincipalFor(u)
		require.NotNil(t, p)
		assert.Equal(t, tt.want, p.Role())
	}
}

func TestPolicy_RestrictCategoryAdminsFlag(t *testing.T) {
	u := &user.User{Role: user.RoleCategoryAdmin, Category: user.CategoryJAMB}
	jambOnly := Item{IsActive: true, Match: MatchAny, Category: user.CategoryWAEC}

	open := Policy{RestrictCategoryAdmins: false}
	assert.True(t, open.CanAccess(u, jambOnly, OpManage))

	closed := Policy{RestrictCategoryAdmins: true}
	assert.False(t, closed.CanAccess(u, jambOnly, OpManage))
}

func TestAudience_IsPublic(t *testing.T) {
	assert.True(t, Audience{}.IsPublic())
	assert.False(t, Audience{Levels: []string{"100"}}.IsPublic())
}

func TestAudience_CloneIsSnapshot(t *testing.T) {
	parent := Audience{Universities: []string{"X"}}
	child := parent.Clone()

	parent.Universities[0] = "Y"
	assert.Equal(t, "X", child.Universities[0], "inherited audience must be an independent snapshot")
}
