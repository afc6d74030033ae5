package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/limiter"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// world is an in-memory store shared by the repository fakes. It enforces the
// same uniqueness and reference rules as the SQL schema.
type world struct {
	seq         int64
	users       map[int64]*model.User
	ingredients map[int64]model.Ingredient
	tags        map[int64]model.Tag
	recipes     map[int64]*storedRecipe
	favorites   map[[2]int64]int64
	cart        map[[2]int64]int64
	subs        map[[2]int64]int64
}

type storedRecipe struct {
	author int64
	attrs  model.RecipeAttrs
	tags   []int64
	ings   []model.IngredientAmount
}

func newWorld() *world {
	return &world{
		users:       map[int64]*model.User{},
		ingredients: map[int64]model.Ingredient{},
		tags:        map[int64]model.Tag{},
		recipes:     map[int64]*storedRecipe{},
		favorites:   map[[2]int64]int64{},
		cart:        map[[2]int64]int64{},
		subs:        map[[2]int64]int64{},
	}
}

func (w *world) next() int64 {
	w.seq++
	return w.seq
}

func (w *world) collection(c model.Collection) map[[2]int64]int64 {
	if c == model.Favorites {
		return w.favorites
	}
	return w.cart
}

func (w *world) view(viewer, id int64) model.UserView {
	_, sub := w.subs[[2]int64{viewer, id}]
	return model.UserView{User: *w.users[id], IsSubscribed: sub}
}

// --- users ---

type fakeUsers struct {
	w      *world
	getErr error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	for _, o := range f.w.users {
		if strings.EqualFold(o.Email, u.Email) {
			return errs.Field("email", errs.ErrAlreadyExists)
		}
		if o.Username == u.Username {
			return errs.Field("username", errs.ErrAlreadyExists)
		}
	}
	u.ID = f.w.next()
	u.CreatedAt = time.Now()
	c := *u
	f.w.users[u.ID] = &c
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.w.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.w.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) View(_ context.Context, viewerID, id int64) (*model.UserView, error) {
	if _, ok := f.w.users[id]; !ok {
		return nil, errs.ErrNotFound
	}
	v := f.w.view(viewerID, id)
	return &v, nil
}

func (f *fakeUsers) List(_ context.Context, viewerID int64, limit, offset int) ([]model.UserView, int, error) {
	ids := make([]int64, 0, len(f.w.users))
	for id := range f.w.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []model.UserView{}
	for _, id := range page(ids, limit, offset) {
		out = append(out, f.w.view(viewerID, id))
	}
	return out, len(ids), nil
}

func (f *fakeUsers) SetPassword(_ context.Context, id int64, pwdHash string) error {
	u, ok := f.w.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PwdHash = pwdHash
	return nil
}

func page[T any](s []T, limit, offset int) []T {
	if offset >= len(s) {
		return nil
	}
	s = s[offset:]
	if limit > 0 && limit < len(s) {
		s = s[:limit]
	}
	return s
}

// --- recipes ---

type fakeRecipes struct{ w *world }

var _ repository.RecipeRepository = (*fakeRecipes)(nil)

func (f *fakeRecipes) checkComposition(tags []int64, ings []model.IngredientAmount) error {
	seen := map[int64]bool{}
	for _, in := range ings {
		if _, ok := f.w.ingredients[in.IngredientID]; !ok {
			return errs.Field("ingredients", errs.ErrUnknownReference)
		}
		if seen[in.IngredientID] {
			return errs.Field("ingredients", errs.ErrDuplicateReference)
		}
		seen[in.IngredientID] = true
	}
	for _, id := range tags {
		if _, ok := f.w.tags[id]; !ok {
			return errs.Field("tags", errs.ErrUnknownReference)
		}
	}
	return nil
}

func (f *fakeRecipes) Create(_ context.Context, authorID int64, attrs model.RecipeAttrs, tags []int64, ings []model.IngredientAmount) (int64, error) {
	if err := f.checkComposition(tags, ings); err != nil {
		return 0, err
	}
	id := f.w.next()
	f.w.recipes[id] = &storedRecipe{
		author: authorID,
		attrs:  attrs,
		tags:   append([]int64(nil), tags...),
		ings:   append([]model.IngredientAmount(nil), ings...),
	}
	return id, nil
}

func (f *fakeRecipes) Replace(_ context.Context, id int64, p model.RecipePatch, tags []int64, ings []model.IngredientAmount) error {
	r, ok := f.w.recipes[id]
	if !ok {
		return errs.ErrNotFound
	}
	if err := f.checkComposition(tags, ings); err != nil {
		return err
	}
	if p.Name != nil {
		r.attrs.Name = *p.Name
	}
	if p.Image != nil {
		r.attrs.Image = *p.Image
	}
	if p.Text != nil {
		r.attrs.Text = *p.Text
	}
	if p.CookingTime != nil {
		r.attrs.CookingTime = *p.CookingTime
	}
	if tags != nil {
		r.tags = append([]int64(nil), tags...)
	}
	if ings != nil {
		r.ings = append([]model.IngredientAmount(nil), ings...)
	}
	return nil
}

func (f *fakeRecipes) Delete(_ context.Context, id int64) error {
	if _, ok := f.w.recipes[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.w.recipes, id)
	for _, m := range []map[[2]int64]int64{f.w.favorites, f.w.cart} {
		for k := range m {
			if k[1] == id {
				delete(m, k)
			}
		}
	}
	return nil
}

func (f *fakeRecipes) AuthorOf(_ context.Context, id int64) (int64, error) {
	r, ok := f.w.recipes[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	return r.author, nil
}

func (f *fakeRecipes) hydrate(viewer, id int64) model.Recipe {
	r := f.w.recipes[id]
	_, fav := f.w.favorites[[2]int64{viewer, id}]
	_, inCart := f.w.cart[[2]int64{viewer, id}]
	rc := model.Recipe{
		ID:               id,
		Author:           f.w.view(viewer, r.author),
		Name:             r.attrs.Name,
		Image:            r.attrs.Image,
		Text:             r.attrs.Text,
		CookingTime:      r.attrs.CookingTime,
		Tags:             []model.Tag{},
		Ingredients:      []model.RecipeIngredient{},
		IsFavorited:      fav,
		IsInShoppingCart: inCart,
	}
	for _, t := range r.tags {
		rc.Tags = append(rc.Tags, f.w.tags[t])
	}
	for _, in := range r.ings {
		rc.Ingredients = append(rc.Ingredients, model.RecipeIngredient{Ingredient: f.w.ingredients[in.IngredientID], Amount: in.Amount})
	}
	return rc
}

func (f *fakeRecipes) Get(_ context.Context, viewerID, id int64) (*model.Recipe, error) {
	if _, ok := f.w.recipes[id]; !ok {
		return nil, errs.ErrNotFound
	}
	rc := f.hydrate(viewerID, id)
	return &rc, nil
}

func (f *fakeRecipes) List(_ context.Context, flt model.RecipeFilter) ([]model.Recipe, int, error) {
	var ids []int64
	for id, r := range f.w.recipes {
		if flt.AuthorID > 0 && r.author != flt.AuthorID {
			continue
		}
		if flt.ViewerID > 0 && flt.IsFavorited {
			if _, ok := f.w.favorites[[2]int64{flt.ViewerID, id}]; !ok {
				continue
			}
		}
		if flt.ViewerID > 0 && flt.IsInShoppingCart {
			if _, ok := f.w.cart[[2]int64{flt.ViewerID, id}]; !ok {
				continue
			}
		}
		if len(flt.TagSlugs) > 0 && !f.hasSlug(r, flt.TagSlugs) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := []model.Recipe{}
	for _, id := range page(ids, flt.Limit, flt.Offset) {
		out = append(out, f.hydrate(flt.ViewerID, id))
	}
	return out, len(ids), nil
}

func (f *fakeRecipes) hasSlug(r *storedRecipe, slugs []string) bool {
	for _, t := range r.tags {
		for _, s := range slugs {
			if f.w.tags[t].Slug == s {
				return true
			}
		}
	}
	return false
}

func (f *fakeRecipes) Short(_ context.Context, id int64) (*model.RecipeShort, error) {
	r, ok := f.w.recipes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &model.RecipeShort{ID: id, Name: r.attrs.Name, Image: r.attrs.Image, CookingTime: r.attrs.CookingTime}, nil
}

func (f *fakeRecipes) ShortByAuthor(ctx context.Context, authorID int64, limit int) ([]model.RecipeShort, error) {
	var ids []int64
	for id, r := range f.w.recipes {
		if r.author == authorID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := []model.RecipeShort{}
	for _, id := range page(ids, limit, 0) {
		s, _ := f.Short(ctx, id)
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeRecipes) CartLines(_ context.Context, userID int64) ([]model.CartLine, error) {
	type entry struct{ seq, recipe int64 }
	var entries []entry
	for k, seq := range f.w.cart {
		if k[0] == userID {
			entries = append(entries, entry{seq, k[1]})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	var out []model.CartLine
	for _, e := range entries {
		for _, in := range f.w.recipes[e.recipe].ings {
			ing := f.w.ingredients[in.IngredientID]
			out = append(out, model.CartLine{RecipeID: e.recipe, Name: ing.Name, Unit: ing.MeasurementUnit, Amount: in.Amount})
		}
	}
	return out, nil
}

// --- relations ---

type fakeRelations struct{ w *world }

var _ repository.RelationRepository = (*fakeRelations)(nil)

func (f *fakeRelations) Add(_ context.Context, c model.Collection, userID, recipeID int64) error {
	if _, ok := f.w.recipes[recipeID]; !ok {
		return errs.ErrNotFound
	}
	m := f.w.collection(c)
	k := [2]int64{userID, recipeID}
	if _, ok := m[k]; ok {
		return errs.ErrConflict
	}
	m[k] = f.w.next()
	return nil
}

func (f *fakeRelations) Remove(_ context.Context, c model.Collection, userID, recipeID int64) error {
	m := f.w.collection(c)
	k := [2]int64{userID, recipeID}
	if _, ok := m[k]; !ok {
		return errs.ErrConflict
	}
	delete(m, k)
	return nil
}

func (f *fakeRelations) Subscribe(_ context.Context, userID, authorID int64) error {
	if userID == authorID {
		return errs.ErrSelfReference
	}
	k := [2]int64{userID, authorID}
	if _, ok := f.w.subs[k]; ok {
		return errs.ErrConflict
	}
	f.w.subs[k] = f.w.next()
	return nil
}

func (f *fakeRelations) Unsubscribe(_ context.Context, userID, authorID int64) error {
	k := [2]int64{userID, authorID}
	if _, ok := f.w.subs[k]; !ok {
		return errs.ErrConflict
	}
	delete(f.w.subs, k)
	return nil
}

func (f *fakeRelations) Subscriptions(_ context.Context, userID int64, limit, offset int) ([]model.Author, int, error) {
	type entry struct{ seq, author int64 }
	var entries []entry
	for k, seq := range f.w.subs {
		if k[0] == userID {
			entries = append(entries, entry{seq, k[1]})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := []model.Author{}
	for _, e := range page(entries, limit, offset) {
		n := 0
		for _, r := range f.w.recipes {
			if r.author == e.author {
				n++
			}
		}
		out = append(out, model.Author{UserView: f.w.view(userID, e.author), RecipesCount: n})
	}
	return out, len(entries), nil
}

// --- reference data ---

type fakeRefs struct{ w *world }

var _ repository.ReferenceRepository = (*fakeRefs)(nil)

func (f *fakeRefs) ListTags(context.Context) ([]model.Tag, error) {
	var out []model.Tag
	for _, t := range f.w.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRefs) GetTag(_ context.Context, id int64) (*model.Tag, error) {
	t, ok := f.w.tags[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &t, nil
}

func (f *fakeRefs) ListIngredients(_ context.Context, prefix string) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, in := range f.w.ingredients {
		if strings.HasPrefix(strings.ToLower(in.Name), strings.ToLower(prefix)) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRefs) GetIngredient(_ context.Context, id int64) (*model.Ingredient, error) {
	in, ok := f.w.ingredients[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &in, nil
}

func (f *fakeRefs) ExistingIngredientIDs(_ context.Context, ids []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, id := range ids {
		if _, ok := f.w.ingredients[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeRefs) ExistingTagIDs(_ context.Context, ids []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, id := range ids {
		if _, ok := f.w.tags[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeRefs) InsertIngredients(_ context.Context, items []model.Ingredient) (int, error) {
	added := 0
outer:
	for _, in := range items {
		for _, o := range f.w.ingredients {
			if o.Name == in.Name && o.MeasurementUnit == in.MeasurementUnit {
				continue outer
			}
		}
		in.ID = f.w.next()
		f.w.ingredients[in.ID] = in
		added++
	}
	return added, nil
}

func (f *fakeRefs) InsertTags(_ context.Context, tags []model.Tag) (int, error) {
	added := 0
outer:
	for _, t := range tags {
		for _, o := range f.w.tags {
			if o.Name == t.Name || o.Color == t.Color || o.Slug == t.Slug {
				continue outer
			}
		}
		t.ID = f.w.next()
		f.w.tags[t.ID] = t
		added++
	}
	return added, nil
}

// --- limiter ---

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
	lastEmail    string
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, email string, _ []byte) (bool, time.Duration, error) {
	l.allowCalls++
	l.lastEmail = email
	return l.allowOK, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

// seed adds a user, ingredients Flour/Sugar/Eggs and tags breakfast/lunch.
func (w *world) seed() (userID int64, flour, sugar, eggs, breakfast, lunch int64) {
	u := &model.User{Email: "chef@example.com", Username: "chef"}
	_ = (&fakeUsers{w: w}).Create(context.Background(), u)
	add := func(name, unit string) int64 {
		id := w.next()
		w.ingredients[id] = model.Ingredient{ID: id, Name: name, MeasurementUnit: unit}
		return id
	}
	tag := func(name, color, slug string) int64 {
		id := w.next()
		w.tags[id] = model.Tag{ID: id, Name: name, Color: color, Slug: slug}
		return id
	}
	return u.ID, add("Flour", "g"), add("Sugar", "g"), add("Eggs", "pcs"),
		tag("Breakfast", "#E26C2D", "breakfast"), tag("Lunch", "#49B64E", "lunch")
}
