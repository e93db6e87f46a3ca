package repository

import (
	"context"
	"database/sql"
	"errors"

	"tutoring-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RoomRepository interface {
	Create(ctx context.Context, q sqlx.ExtContext, room *model.Room) (*model.Room, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByCode(ctx context.Context, roomCode string) (*model.Room, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRoomRepository struct {
	db *sqlx.DB
}

func NewPostgresRoomRepository(db *sqlx.DB) RoomRepository {
	return &postgresRoomRepository{db: db}
}

func (r *postgresRoomRepository) Create(ctx context.Context, q sqlx.ExtContext, room *model.Room) (*model.Room, error) {
	query := `
		INSERT INTO rooms (session_id, room_code)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	row := q.QueryRowxContext(ctx, query, room.SessionID, room.RoomCode)
	if err := row.Scan(&room.ID, &room.CreatedAt); err != nil {
		return nil, err
	}

	return room, nil
}

func (r *postgresRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	query := `SELECT * FROM rooms WHERE id = $1`
	err := r.db.GetContext(ctx, &room, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &room, nil
}

func (r *postgresRoomRepository) FindByCode(ctx context.Context, roomCode string) (*model.Room, error) {
	var room model.Room
	query := `SELECT * FROM rooms WHERE room_code = $1`
	err := r.db.GetContext(ctx, &room, query, roomCode)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &room, nil
}

func (r *postgresRoomRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) (*model.Room, error) {
	var room model.Room
	query := `SELECT * FROM rooms WHERE session_id = $1`
	err := r.db.GetContext(ctx, &room, query, sessionID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &room, nil
}

func (r *postgresRoomRepository) List(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	query := `SELECT * FROM rooms ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &rooms, query)
	return rooms, err
}

func (r *postgresRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rooms WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
