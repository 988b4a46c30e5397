package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fridgechef/internal/core/session"
	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/"}, store), store
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGenerateRecipe_PostsIngredientsOnly(t *testing.T) {
	var gotBody string
	var gotPath string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"title":    "Omelette",
			"content":  "## Omelette",
			"calories": 320,
		})
	})
	_ = store.Set(context.Background(), &session.Session{Token: "tok"})

	resp, err := c.GenerateRecipe(context.Background(), common.GenerateRecipeRequest{
		Ingredients: []string{"egg", "cheese"},
	})
	if err != nil {
		t.Fatalf("GenerateRecipe returned error: %v", err)
	}
	if gotPath != "/chef/generate" {
		t.Errorf("expected /chef/generate, got %s", gotPath)
	}
	if strings.TrimSpace(gotBody) != `{"ingredients":["egg","cheese"]}` {
		t.Errorf("unexpected request body: %s", gotBody)
	}
	if resp.Title != "Omelette" || resp.Calories != 320 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRegister_DuplicateEmailUsesBackendMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
	})

	_, err := c.Register(context.Background(), common.RegisterRequest{
		Email:    "a@b.c",
		Password: "secret",
		Username: "ann",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "Email already registered" {
		t.Errorf("expected backend message, got %q", err.Error())
	}
	if !IsBackendError(err) {
		t.Errorf("expected backend error type, got %T", err)
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error":"bad things"}`, want: "bad things"},
		{name: "message wins", body: `{"message":"first","error":"second"}`, want: "first"},
		{name: "empty object", body: `{}`, want: "Login failed"},
		{name: "not json", body: `<html>oops</html>`, want: "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Login(context.Background(), common.LoginRequest{Email: "a@b.c", Password: "x"})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestLogin_MapsBackendResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"AccessToken": "jwt-token",
			"id":          "u1",
			"username":    "ann",
		})
	})

	resp, err := c.Login(context.Background(), common.LoginRequest{Email: "ann@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Errorf("expected token jwt-token, got %s", resp.Token)
	}
	if resp.User.ID != "u1" || resp.User.Username != "ann" || resp.User.Email != "ann@example.com" {
		t.Errorf("unexpected user: %+v", resp.User)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var headers []string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		writeJSON(w, http.StatusOK, []common.PantryItem{})
	})
	ctx := context.Background()

	if _, err := c.GetPantryItems(ctx); err != nil {
		t.Fatalf("GetPantryItems returned error: %v", err)
	}
	_ = store.Set(ctx, &session.Session{Token: "abc"})
	if _, err := c.GetPantryItems(ctx); err != nil {
		t.Fatalf("GetPantryItems returned error: %v", err)
	}
	_ = store.Clear(ctx)
	if _, err := c.GetPantryItems(ctx); err != nil {
		t.Fatalf("GetPantryItems returned error: %v", err)
	}

	want := []string{"", "Bearer abc", ""}
	for i, h := range headers {
		if h != want[i] {
			t.Errorf("call %d: expected Authorization %q, got %q", i, want[i], h)
		}
	}
}

func TestGetPublicRecipe_NoAuth(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("public recipe must not send Authorization")
		}
		if r.URL.Path != "/recipes/share/tok-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "r1", "title": "Soup"})
	})
	_ = store.Set(context.Background(), &session.Session{Token: "abc"})

	recipe, err := c.GetPublicRecipe(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetPublicRecipe returned error: %v", err)
	}
	if recipe.Title != "Soup" {
		t.Errorf("expected Soup, got %s", recipe.Title)
	}
}

func TestGetRecipes_FilterAndNullList(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	})

	recipes, err := c.GetRecipes(context.Background(), common.RecipeFilter{Ingredient: "egg", MaxCalories: 500})
	if err != nil {
		t.Fatalf("GetRecipes returned error: %v", err)
	}
	if recipes == nil || len(recipes) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", recipes)
	}
	if gotQuery != "ingredient=egg&max_calories=500" {
		t.Errorf("unexpected query %q", gotQuery)
	}
}

func TestGetMealPlan_Query(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_date") != "2024-01-01" || q.Get("end_date") != "2024-01-07" {
			t.Errorf("unexpected query %v", q)
		}
		writeJSON(w, http.StatusOK, []common.MealPlanEntry{
			{ID: "m1", RecipeID: "r1", Date: "2024-01-02", MealType: common.MealLunch},
		})
	})

	entries, err := c.GetMealPlan(context.Background(), "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("GetMealPlan returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].MealType != common.MealLunch {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestDeleteEndpoints(t *testing.T) {
	var calls []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	if err := c.DeleteRecipe(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if err := c.DeletePantryItem(ctx, "p1"); err != nil {
		t.Fatalf("DeletePantryItem: %v", err)
	}
	if err := c.DeleteMealPlan(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMealPlan: %v", err)
	}

	want := []string{"DELETE /recipes/r1", "DELETE /pantry/p1", "DELETE /meal-plans/m1"}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], calls[i])
		}
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(config.BackendConfig{BaseURL: url}, session.NewMemoryStore())
	_, err := c.GetPantryItems(context.Background())
	if err == nil {
		t.Fatal("expected transport error, got nil")
	}
	if IsBackendError(err) {
		t.Errorf("transport failure should not be a backend error: %v", err)
	}
}
