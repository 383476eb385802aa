package forms

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postContext(values url.Values) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestBindPostForm(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		invalid []string
	}{
		{"valid", url.Values{"text": {"hello"}}, nil},
		{"missing text", url.Values{}, []string{"text"}},
		{"blank text", url.Values{"text": {"   \n"}}, []string{"text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var form PostForm
			errs := Bind(postContext(tt.values), &form)
			if len(errs) != len(tt.invalid) {
				t.Fatalf("errors = %v, want fields %v", errs, tt.invalid)
			}
			for _, field := range tt.invalid {
				if errs[field] != "This field is required." {
					t.Errorf("%s: unexpected message %q", field, errs[field])
				}
			}
		})
	}
}

func TestBindSignupForm(t *testing.T) {
	valid := url.Values{
		"username":  {"leo.tolstoy"},
		"email":     {"leo@example.com"},
		"password1": {"war-and-peace"},
		"password2": {"war-and-peace"},
	}

	tests := []struct {
		name   string
		change func(url.Values)
		field  string
	}{
		{"valid", func(url.Values) {}, ""},
		{"bad username", func(v url.Values) { v.Set("username", "leo tolstoy") }, "username"},
		{"bad email", func(v url.Values) { v.Set("email", "not-an-email") }, "email"},
		{"empty email", func(v url.Values) { v.Del("email") }, ""},
		{"short password", func(v url.Values) { v.Set("password1", "short"); v.Set("password2", "short") }, "password1"},
		{"mismatch", func(v url.Values) { v.Set("password2", "anna-karenina") }, "password2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{}
			for k, v := range valid {
				values[k] = append([]string(nil), v...)
			}
			tt.change(values)

			var form SignupForm
			errs := Bind(postContext(values), &form)
			if tt.field == "" {
				if errs.Any() {
					t.Fatalf("unexpected errors %v", errs)
				}
				return
			}
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestSignupCheck(t *testing.T) {
	conn := openTestDB(t)
	conn.Create(&models.User{Username: "taken", Password: "x"})

	for name, want := range map[string]string{
		"taken":  "A user with that username already exists.",
		"Follow": "This username is reserved.",
		"fresh":  "",
	} {
		errs := Errors{}
		form := SignupForm{Username: name}
		if err := form.Check(conn, errs); err != nil {
			t.Fatal(err)
		}
		if errs["username"] != want {
			t.Errorf("%s: got %q, want %q", name, errs["username"], want)
		}
	}
}

func TestResolveGroup(t *testing.T) {
	conn := openTestDB(t)
	group := models.Group{Title: "Cats", Slug: "cats"}
	conn.Create(&group)

	errs := Errors{}
	form := PostForm{Group: fmt.Sprint(group.ID)}
	id := form.ResolveGroup(conn, errs)
	if errs.Any() || id == nil || *id != group.ID {
		t.Fatalf("expected group %d, got %v (errors %v)", group.ID, id, errs)
	}

	form = PostForm{}
	if id := form.ResolveGroup(conn, errs); id != nil || errs.Any() {
		t.Errorf("empty choice should mean no group")
	}

	for _, choice := range []string{"999", "cats"} {
		errs := Errors{}
		form := PostForm{Group: choice}
		if id := form.ResolveGroup(conn, errs); id != nil {
			t.Errorf("%s: expected no group", choice)
		}
		if errs["group"] != "Select a valid choice." {
			t.Errorf("%s: unexpected errors %v", choice, errs)
		}
	}
}

func TestGroupForm(t *testing.T) {
	conn := openTestDB(t)
	conn.Create(&models.Group{Title: "Cats", Slug: "cats"})

	var form GroupForm
	errs := Bind(postContext(url.Values{"title": {"Dogs"}, "slug": {"dogs and more"}}), &form)
	if _, ok := errs["slug"]; !ok {
		t.Errorf("expected slug error, got %v", errs)
	}

	form = GroupForm{Title: "Cats again", Slug: "cats"}
	errs = Errors{}
	if err := form.Check(conn, errs); err != nil {
		t.Fatal(err)
	}
	if errs["slug"] == "" {
		t.Error("expected duplicate slug error")
	}
}

func TestCheckReportsDatabaseErrors(t *testing.T) {
	conn := openTestDB(t)
	if err := conn.Migrator().DropTable(&models.Group{}); err != nil {
		t.Fatal(err)
	}

	form := GroupForm{Title: "Cats", Slug: "cats"}
	if err := form.Check(conn, Errors{}); err == nil {
		t.Error("expected an error without the groups table")
	}
}
