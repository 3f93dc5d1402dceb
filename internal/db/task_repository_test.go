package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

func insertBoard(t *testing.T, db *sql.DB, ownerID uuid.UUID, category models.Category, position int) *models.Board {
	t.Helper()
	board := &models.Board{OwnerID: ownerID, Category: category, Position: position}
	if err := NewBoardRepository(db).Create(context.Background(), board); err != nil {
		t.Fatalf("Failed to insert board: %v", err)
	}
	return board
}

func insertTask(t *testing.T, db *sql.DB, board *models.Board, title string, position int) *models.Task {
	t.Helper()
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		BoardID:   board.ID,
		CreatorID: board.OwnerID,
		Title:     title,
		DueDate:   &due,
		Color:     models.DefaultColor,
		Position:  position,
	}
	if err := NewTaskRepository(db).Create(context.Background(), task); err != nil {
		t.Fatalf("Failed to insert task %s: %v", title, err)
	}
	return task
}

func positions(t *testing.T, db *sql.DB, boardID uuid.UUID) []string {
	t.Helper()
	rows, err := db.Query("SELECT title FROM tasks WHERE board_id = $1 ORDER BY position", boardID)
	if err != nil {
		t.Fatalf("Failed to query positions: %v", err)
	}
	defer rows.Close()
	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			t.Fatalf("Failed to scan title: %v", err)
		}
		titles = append(titles, title)
	}
	return titles
}

func equalTitles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTaskRepository_CreateAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewTaskRepository(db)

	user := insertUser(t, db, "ada")
	board := insertBoard(t, db, user.ID, models.CategoryUniversita, 0)

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		BoardID:     board.ID,
		CreatorID:   user.ID,
		Title:       "Exam prep",
		Description: "Chapters 1-4",
		DueDate:     &due,
		Color:       models.Color{R: 10, G: 200, B: 30},
		Links:       []string{"https://a.example", "https://b.example"},
		Image:       []byte{1, 2, 3},
	}

	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("Create task: %v", err)
	}
	if task.ID == uuid.Nil {
		t.Fatal("Expected Create to assign an id")
	}

	got, err := repo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != task.Title || got.Description != task.Description || got.Color != task.Color {
		t.Errorf("GetByID returned incorrect data: got %+v, want %+v", got, task)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("Expected due date %v, got %v", due, got.DueDate)
	}
	if !equalTitles(got.Links, task.Links) {
		t.Errorf("Expected links %v, got %v", task.Links, got.Links)
	}
	if string(got.Image) != string(task.Image) {
		t.Errorf("Expected image %v, got %v", task.Image, got.Image)
	}
}

func TestTaskRepository_Update_MovesBoardAndClosesGap(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewTaskRepository(db)

	user := insertUser(t, db, "ada")
	uni := insertBoard(t, db, user.ID, models.CategoryUniversita, 0)
	work := insertBoard(t, db, user.ID, models.CategoryLavoro, 1)
	insertTask(t, db, uni, "A", 0)
	b := insertTask(t, db, uni, "B", 1)
	insertTask(t, db, uni, "C", 2)
	insertTask(t, db, work, "X", 0)

	b.BoardID = work.ID
	b.Position = 1
	b.Title = "B moved"
	b.Links = []string{"https://only.example"}
	b.Completed = true
	if err := repo.Update(context.Background(), b); err != nil {
		t.Fatalf("Update task: %v", err)
	}

	if got := positions(t, db, uni.ID); !equalTitles(got, []string{"A", "C"}) {
		t.Errorf("Expected source board [A C], got %v", got)
	}
	if got := positions(t, db, work.ID); !equalTitles(got, []string{"X", "B moved"}) {
		t.Errorf("Expected destination board [X B moved], got %v", got)
	}

	var maxPos int
	if err := db.QueryRow("SELECT MAX(position) FROM tasks WHERE board_id = $1", uni.ID).Scan(&maxPos); err != nil {
		t.Fatalf("Failed to query positions: %v", err)
	}
	if maxPos != 1 {
		t.Errorf("Expected contiguous positions ending at 1, got max %d", maxPos)
	}

	updated, err := repo.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if !updated.Completed || len(updated.Links) != 1 {
		t.Errorf("Update did not persist changes: got %+v", updated)
	}
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	due := time.Now().UTC()
	err := NewTaskRepository(db).Update(context.Background(), &models.Task{ID: uuid.New(), DueDate: &due})
	if err == nil {
		t.Fatal("Expected error when updating missing task, got nil")
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewTaskRepository(db)

	user := insertUser(t, db, "ada")
	friend := insertUser(t, db, "bob")
	board := insertBoard(t, db, user.ID, models.CategoryUniversita, 0)
	a := insertTask(t, db, board, "A", 0)
	insertTask(t, db, board, "B", 1)
	if err := NewShareRepository(db).Create(context.Background(), a.ID, friend.ID, models.PermissionReadOnly); err != nil {
		t.Fatalf("Create share: %v", err)
	}

	if err := repo.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete task: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), a.ID); err == nil {
		t.Fatal("Expected error when getting deleted task, got nil")
	}

	var pos int
	if err := db.QueryRow("SELECT position FROM tasks WHERE title = 'B'").Scan(&pos); err != nil {
		t.Fatalf("Failed to query B: %v", err)
	}
	if pos != 0 {
		t.Errorf("Expected B to move up to position 0, got %d", pos)
	}

	var shares int
	if err := db.QueryRow("SELECT COUNT(*) FROM task_shares").Scan(&shares); err != nil {
		t.Fatalf("Failed to count shares: %v", err)
	}
	if shares != 0 {
		t.Errorf("Expected shares of deleted task to be removed, got %d", shares)
	}
}

func TestTaskRepository_SaveOrdering(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewTaskRepository(db)

	user := insertUser(t, db, "ada")
	board := insertBoard(t, db, user.ID, models.CategoryUniversita, 0)
	a := insertTask(t, db, board, "A", 0)
	b := insertTask(t, db, board, "B", 1)
	c := insertTask(t, db, board, "C", 2)

	board.Tasks = []*models.Task{c, a, b}
	if err := repo.SaveOrdering(context.Background(), board); err != nil {
		t.Fatalf("SaveOrdering: %v", err)
	}
	if got := positions(t, db, board.ID); !equalTitles(got, []string{"C", "A", "B"}) {
		t.Errorf("Expected [C A B], got %v", got)
	}
}

func TestTaskRepository_ListByDueDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewTaskRepository(db)

	user := insertUser(t, db, "ada")
	other := insertUser(t, db, "bob")
	uni := insertBoard(t, db, user.ID, models.CategoryUniversita, 0)
	work := insertBoard(t, db, user.ID, models.CategoryLavoro, 1)
	foreign := insertBoard(t, db, other.ID, models.CategoryUniversita, 0)
	insertTask(t, db, work, "W", 0)
	insertTask(t, db, uni, "U", 0)
	insertTask(t, db, foreign, "F", 0)

	tasks, err := repo.ListByDueDate(context.Background(), user.ID, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListByDueDate: %v", err)
	}
	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	if !equalTitles(titles, []string{"U", "W"}) {
		t.Errorf("Expected [U W] in board order, got %v", titles)
	}

	none, err := repo.ListByDueDate(context.Background(), user.ID, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListByDueDate: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no tasks, got %d", len(none))
	}
}

func TestTaskRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewTaskRepository(db)

	user := insertUser(t, db, "ada")
	board := insertBoard(t, db, user.ID, models.CategoryUniversita, 0)
	exam := insertTask(t, db, board, "Exam prep", 0)
	insertTask(t, db, board, "Groceries", 1)
	linked := insertTask(t, db, board, "Reading", 2)
	insertTask(t, db, board, "ÈSAME di Università", 3)
	linked.Links = []string{"https://exams.example/past-papers"}
	if err := repo.Update(context.Background(), linked); err != nil {
		t.Fatalf("Update task: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "Title match ignoring case", query: "exam", want: []string{exam.Title, "Reading"}},
		{name: "Link only", query: "past-papers", want: []string{"Reading"}},
		{name: "Non-ASCII exact case", query: "ÈSAME", want: []string{"ÈSAME di Università"}},
		{name: "Non-ASCII other case", query: "èsame", want: []string{"ÈSAME di Università"}},
		{name: "Non-ASCII upper query", query: "UNIVERSITÀ", want: []string{"ÈSAME di Università"}},
		{name: "No match", query: "zzz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.Search(context.Background(), user.ID, tt.query)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			var titles []string
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			if !equalTitles(titles, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, titles)
			}
		})
	}
}
