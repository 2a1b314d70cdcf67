// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"database/sql"
	"testing"

	"bookshare/model"
	bookrepo "bookshare/repository/book"
	booksvc "bookshare/service/book"
)

type fakeRepo struct {
	authors  map[int64]bool
	genres   map[int64]bool
	books    map[int64]*model.Book
	links    map[int64][2][]int64 // bookID -> {authorIDs, genreIDs}
	requests map[int64]int        // bookID -> open request count
	nextID   int64

	lastFilter bookrepo.Filter
}

func newRepo() *fakeRepo {
	return &fakeRepo{
		authors:  map[int64]bool{},
		genres:   map[int64]bool{},
		books:    map[int64]*model.Book{},
		links:    map[int64][2][]int64{},
		requests: map[int64]int{},
	}
}

func (f *fakeRepo) InTx(ctx context.Context, fn func(bookrepo.Tx) error) error {
	return fn(&fakeTx{f})
}

func (f *fakeRepo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	cp.Authors = []model.Author{}
	cp.Genres = []model.Genre{}
	for _, aid := range f.links[id][0] {
		cp.Authors = append(cp.Authors, model.Author{ID: aid})
	}
	for _, gid := range f.links[id][1] {
		cp.Genres = append(cp.Genres, model.Genre{ID: gid})
	}
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context, filter bookrepo.Filter) ([]model.Book, int64, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

type fakeTx struct{ r *fakeRepo }

func (t *fakeTx) Insert(ctx context.Context, b *model.Book) error {
	t.r.nextID++
	b.ID = t.r.nextID
	b.Status = model.BookAvailable
	cp := *b
	t.r.books[b.ID] = &cp
	return nil
}

func (t *fakeTx) AuthorsExist(ctx context.Context, ids []int64) (bool, error) {
	for _, id := range ids {
		if !t.r.authors[id] {
			return false, nil
		}
	}
	return true, nil
}

func (t *fakeTx) GenresExist(ctx context.Context, ids []int64) (bool, error) {
	for _, id := range ids {
		if !t.r.genres[id] {
			return false, nil
		}
	}
	return true, nil
}

func (t *fakeTx) ReplaceAuthors(ctx context.Context, bookID int64, ids []int64) error {
	l := t.r.links[bookID]
	l[0] = ids
	t.r.links[bookID] = l
	return nil
}

func (t *fakeTx) ReplaceGenres(ctx context.Context, bookID int64, ids []int64) error {
	l := t.r.links[bookID]
	l[1] = ids
	t.r.links[bookID] = l
	return nil
}

func (t *fakeTx) OwnerOf(ctx context.Context, bookID int64) (int64, error) {
	b, ok := t.r.books[bookID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return b.OwnerID, nil
}

func (t *fakeTx) Update(ctx context.Context, bookID int64, title, description, pickup *string) error {
	b := t.r.books[bookID]
	if title != nil {
		b.Title = *title
	}
	if description != nil {
		b.Description = *description
	}
	if pickup != nil {
		b.PickupLocation = pickup
	}
	return nil
}

func (t *fakeTx) DeleteRequests(ctx context.Context, bookID int64) (int64, error) {
	n := int64(t.r.requests[bookID])
	delete(t.r.requests, bookID)
	return n, nil
}

func (t *fakeTx) DeleteLinks(ctx context.Context, bookID int64) error {
	delete(t.r.links, bookID)
	return nil
}

func (t *fakeTx) Delete(ctx context.Context, bookID int64) error {
	delete(t.r.books, bookID)
	return nil
}

func TestCreate_AlwaysAvailable(t *testing.T) {
	r := newRepo()
	r.authors[1] = true
	r.genres[2] = true
	s := booksvc.New(r)

	b, err := s.Create(context.Background(), 7, booksvc.CreateInput{
		Title:     "The Dispossessed",
		AuthorIDs: []int64{1},
		GenreIDs:  []int64{2},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != model.BookAvailable {
		t.Fatalf("status = %q; want available", b.Status)
	}
	if b.OwnerID != 7 {
		t.Fatalf("owner = %d; want 7", b.OwnerID)
	}
	if len(b.Authors) != 1 || len(b.Genres) != 1 {
		t.Fatalf("links = %d authors, %d genres; want 1 each", len(b.Authors), len(b.Genres))
	}
}

func TestCreate_Validation(t *testing.T) {
	r := newRepo()
	r.authors[1] = true
	s := booksvc.New(r)

	if _, err := s.Create(context.Background(), 7, booksvc.CreateInput{}); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatalf("empty title: got %v; want ErrBadInput", err)
	}
	_, err := s.Create(context.Background(), 7, booksvc.CreateInput{Title: "x", AuthorIDs: []int64{99}})
	if booksvc.Code(err) != booksvc.ErrUnknownAuthor {
		t.Fatalf("unknown author: got %v; want ErrUnknownAuthor", err)
	}
	_, err = s.Create(context.Background(), 7, booksvc.CreateInput{Title: "x", GenreIDs: []int64{99}})
	if booksvc.Code(err) != booksvc.ErrUnknownGenre {
		t.Fatalf("unknown genre: got %v; want ErrUnknownGenre", err)
	}
}

func TestUpdate_OwnerOnly(t *testing.T) {
	r := newRepo()
	s := booksvc.New(r)
	b, _ := s.Create(context.Background(), 7, booksvc.CreateInput{Title: "x"})

	title := "y"
	if _, err := s.Update(context.Background(), 8, b.ID, booksvc.UpdateInput{Title: &title}); booksvc.Code(err) != booksvc.ErrNotOwner {
		t.Fatalf("non-owner update: got %v; want ErrNotOwner", err)
	}
	got, err := s.Update(context.Background(), 7, b.ID, booksvc.UpdateInput{Title: &title})
	if err != nil || got.Title != "y" {
		t.Fatalf("owner update: got %v, %v; want title y", got, err)
	}
	if _, err := s.Update(context.Background(), 7, 404, booksvc.UpdateInput{}); booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("absent book: got %v; want ErrNotFound", err)
	}
}

func TestDelete_CascadesRequestsAndLinks(t *testing.T) {
	r := newRepo()
	r.authors[1] = true
	s := booksvc.New(r)
	b, _ := s.Create(context.Background(), 7, booksvc.CreateInput{Title: "x", AuthorIDs: []int64{1}})
	r.requests[b.ID] = 2

	if err := s.Delete(context.Background(), 8, b.ID); booksvc.Code(err) != booksvc.ErrNotOwner {
		t.Fatalf("non-owner delete: got %v; want ErrNotOwner", err)
	}
	if err := s.Delete(context.Background(), 7, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(r.books) != 0 || len(r.requests) != 0 || len(r.links) != 0 {
		t.Fatalf("cascade left books=%d requests=%d links=%d", len(r.books), len(r.requests), len(r.links))
	}
	if _, err := s.Get(context.Background(), b.ID); booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("deleted book still readable: %v", err)
	}
}

func TestList_PageDefaults(t *testing.T) {
	r := newRepo()
	s := booksvc.New(r)

	if _, _, err := s.List(context.Background(), booksvc.Filter{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if r.lastFilter.Page != 1 || r.lastFilter.PageSize != 20 {
		t.Fatalf("defaults = page %d size %d; want 1, 20", r.lastFilter.Page, r.lastFilter.PageSize)
	}
	if _, _, err := s.List(context.Background(), booksvc.Filter{Page: 3, PageSize: 500}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if r.lastFilter.Page != 3 || r.lastFilter.PageSize != 100 {
		t.Fatalf("cap = page %d size %d; want 3, 100", r.lastFilter.Page, r.lastFilter.PageSize)
	}
}
