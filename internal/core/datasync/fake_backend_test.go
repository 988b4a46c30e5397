package datasync

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fridgechef/internal/pkg/common"
)

// fakeBackend 記憶體中的後端，只實作測試需要的路由
type fakeBackend struct {
	mu       sync.Mutex
	seq      int
	recipes  []common.Recipe
	pantry   []common.PantryItem
	meals    []common.MealPlanEntry
	users    map[string]string
	calls    map[string]int
	failNext map[string]int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		users:    map[string]string{},
		calls:    map[string]int{},
		failNext: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", fb.register)
	mux.HandleFunc("POST /auth/login", fb.login)
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /chef/generate", fb.generate)
	mux.HandleFunc("GET /recipes", fb.listRecipes)
	mux.HandleFunc("POST /recipes", fb.saveRecipe)
	mux.HandleFunc("DELETE /recipes/{id}", fb.deleteRecipe)
	mux.HandleFunc("POST /recipes/{id}/share", fb.toggleShare)
	mux.HandleFunc("GET /recipes/share/{token}", fb.publicRecipe)
	mux.HandleFunc("GET /pantry", fb.listPantry)
	mux.HandleFunc("POST /pantry", fb.addPantry)
	mux.HandleFunc("DELETE /pantry/{id}", fb.deletePantry)
	mux.HandleFunc("GET /meal-plans", fb.listMeals)
	mux.HandleFunc("POST /meal-plans", fb.addMeal)
	mux.HandleFunc("DELETE /meal-plans/{id}", fb.deleteMeal)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		fb.mu.Lock()
		fb.calls[route]++
		fail := fb.failNext[route] > 0
		if fail {
			fb.failNext[route]--
		}
		fb.mu.Unlock()

		if fail {
			respond(w, http.StatusInternalServerError, map[string]string{"error": "backend exploded"})
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/auth/") && !strings.HasPrefix(r.URL.Path, "/recipes/share/") &&
			r.Header.Get("Authorization") == "" {
			respond(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) callCount(route string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[route]
}

func (fb *fakeBackend) failOnce(route string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failNext[route]++
}

func (fb *fakeBackend) nextID(prefix string) string {
	fb.seq++
	return fmt.Sprintf("%s-%d", prefix, fb.seq)
}

func respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req common.RegisterRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, exists := fb.users[req.Email]; exists {
		respond(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
		return
	}
	fb.users[req.Email] = req.Password
	respond(w, http.StatusCreated, common.BackendAuthResponse{AccessToken: "token-" + req.Username, ID: "u1", Username: req.Username})
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req common.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if pw, ok := fb.users[req.Email]; !ok || pw != req.Password {
		respond(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	respond(w, http.StatusOK, common.BackendAuthResponse{AccessToken: "token-login", ID: "u1", Username: "ann"})
}

func (fb *fakeBackend) generate(w http.ResponseWriter, r *http.Request) {
	var req common.GenerateRecipeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	respond(w, http.StatusOK, common.GenerateRecipeResponse{
		Title:    "Dish of " + strings.Join(req.Ingredients, " & "),
		Content:  "## Steps\n1. Cook",
		Calories: 400,
	})
}

func (fb *fakeBackend) listRecipes(w http.ResponseWriter, r *http.Request) {
	ingredient := r.URL.Query().Get("ingredient")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []common.Recipe{}
	for _, rec := range fb.recipes {
		if ingredient != "" && !containsName(rec.IngredientsUsed, ingredient) {
			continue
		}
		out = append(out, rec)
	}
	respond(w, http.StatusOK, out)
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if strings.EqualFold(n, want) {
			return true
		}
	}
	return false
}

func (fb *fakeBackend) saveRecipe(w http.ResponseWriter, r *http.Request) {
	var req common.SaveRecipeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	rec := common.Recipe{
		ID:               fb.nextID("r"),
		UserID:           "u1",
		Title:            req.Title,
		IngredientsUsed:  req.IngredientsUsed,
		ContentMarkdown:  req.ContentMarkdown,
		CaloriesEstimate: req.CaloriesEstimate,
		CreatedAt:        time.Now(),
	}
	fb.recipes = append([]common.Recipe{rec}, fb.recipes...)
	respond(w, http.StatusCreated, rec)
}

func (fb *fakeBackend) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, rec := range fb.recipes {
		if rec.ID == id {
			fb.recipes = append(fb.recipes[:i], fb.recipes[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	respond(w, http.StatusNotFound, map[string]string{"message": "Recipe not found"})
}

func (fb *fakeBackend) toggleShare(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.recipes {
		if fb.recipes[i].ID == id {
			rec := &fb.recipes[i]
			rec.IsPublic = !rec.IsPublic
			if rec.IsPublic {
				token := "share-" + id
				rec.ShareToken = &token
			} else {
				rec.ShareToken = nil
			}
			respond(w, http.StatusOK, rec)
			return
		}
	}
	respond(w, http.StatusNotFound, map[string]string{"message": "Recipe not found"})
}

func (fb *fakeBackend) publicRecipe(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, rec := range fb.recipes {
		if rec.SharedToken() == token {
			respond(w, http.StatusOK, rec)
			return
		}
	}
	respond(w, http.StatusNotFound, map[string]string{"message": "Recipe not found"})
}

func (fb *fakeBackend) listPantry(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.pantry == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
		return
	}
	respond(w, http.StatusOK, fb.pantry)
}

func (fb *fakeBackend) addPantry(w http.ResponseWriter, r *http.Request) {
	var req common.AddPantryItemRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	item := common.PantryItem{ID: fb.nextID("p"), UserID: "u1", Name: req.Name, Quantity: req.Quantity, Unit: req.Unit}
	fb.pantry = append(fb.pantry, item)
	respond(w, http.StatusCreated, item)
}

func (fb *fakeBackend) deletePantry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, item := range fb.pantry {
		if item.ID == id {
			fb.pantry = append(fb.pantry[:i], fb.pantry[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	respond(w, http.StatusNotFound, map[string]string{"message": "Item not found"})
}

func (fb *fakeBackend) listMeals(w http.ResponseWriter, r *http.Request) {
	start, end := r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []common.MealPlanEntry{}
	for _, m := range fb.meals {
		if m.Date >= start && m.Date <= end {
			out = append(out, m)
		}
	}
	respond(w, http.StatusOK, out)
}

func (fb *fakeBackend) addMeal(w http.ResponseWriter, r *http.Request) {
	var req common.AddMealPlanRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	title := ""
	for _, rec := range fb.recipes {
		if rec.ID == req.RecipeID {
			title = rec.Title
		}
	}
	entry := common.MealPlanEntry{
		ID:          fb.nextID("m"),
		UserID:      "u1",
		RecipeID:    req.RecipeID,
		Date:        req.Date,
		MealType:    req.MealType,
		RecipeTitle: title,
	}
	fb.meals = append(fb.meals, entry)
	respond(w, http.StatusCreated, entry)
}

func (fb *fakeBackend) deleteMeal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, m := range fb.meals {
		if m.ID == id {
			fb.meals = append(fb.meals[:i], fb.meals[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	respond(w, http.StatusNotFound, map[string]string{"message": "Meal plan entry not found"})
}
