package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ratehub/internal/app/ratings/entity"
)

// RatingRepositoryTestSuite тестовый suite для PostgreSQL repository
type RatingRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  RatingRepository
	sqlDB *sql.DB
}

func TestRatingRepositorySuite(t *testing.T) {
	suite.Run(t, new(RatingRepositoryTestSuite))
}

func (s *RatingRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	// TranslateError как в production: нарушение уникального индекса
	// приходит как gorm.ErrDuplicatedKey
	s.db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	require.NoError(s.T(), err)

	s.repo = NewRatingRepository(s.db)
}

func (s *RatingRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func ratingRows(ratings ...entity.Rating) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "store_id", "user_id", "value", "comment", "flagged", "flagged_at", "created_at", "updated_at"})
	for _, r := range ratings {
		rows.AddRow(r.ID, r.StoreID, r.UserID, r.Value, r.Comment, r.Flagged, r.FlaggedAt, r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

// ===================== Create Tests =====================

func (s *RatingRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()
	rating := &entity.Rating{
		ID:      uuid.New(),
		StoreID: uuid.New(),
		UserID:  uuid.New(),
		Value:   4,
		Comment: "nice",
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "ratings"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Create(ctx, rating)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestCreate_DuplicatePair() {
	ctx := context.Background()
	rating := &entity.Rating{
		ID:      uuid.New(),
		StoreID: uuid.New(),
		UserID:  uuid.New(),
		Value:   5,
	}

	// Уникальный индекс (store_id, user_id): Postgres возвращает 23505
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "ratings"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	s.mock.ExpectRollback()

	// Act
	err := s.repo.Create(ctx, rating)

	// Assert
	s.ErrorIs(err, ErrDuplicate)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetByID Tests =====================

func (s *RatingRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	ratingID := uuid.New()
	storeID := uuid.New()
	userID := uuid.New()

	rows := ratingRows(entity.Rating{
		ID:        ratingID,
		StoreID:   storeID,
		UserID:    userID,
		Value:     4,
		Comment:   "good",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE id = $1`)).
		WithArgs(ratingID, 1).
		WillReturnRows(rows)

	// Act
	rating, err := s.repo.GetByID(ctx, ratingID)

	// Assert
	s.NoError(err)
	s.NotNil(rating)
	s.Equal(ratingID, rating.ID)
	s.Equal(storeID, rating.StoreID)
	s.Equal(4, rating.Value)
	s.Equal("good", rating.Comment)
	s.False(rating.Flagged)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()
	ratingID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE id = $1`)).
		WithArgs(ratingID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	rating, err := s.repo.GetByID(ctx, ratingID)

	// Assert
	s.Nil(rating)
	s.ErrorIs(err, ErrRatingNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetByStoreAndUser Tests =====================

func (s *RatingRepositoryTestSuite) TestGetByStoreAndUser_Success() {
	ctx := context.Background()
	storeID := uuid.New()
	userID := uuid.New()

	rows := ratingRows(entity.Rating{
		ID:        uuid.New(),
		StoreID:   storeID,
		UserID:    userID,
		Value:     3,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE store_id = $1 AND user_id = $2`)).
		WithArgs(storeID, userID, 1).
		WillReturnRows(rows)

	// Act
	rating, err := s.repo.GetByStoreAndUser(ctx, storeID, userID)

	// Assert
	s.NoError(err)
	s.Equal(storeID, rating.StoreID)
	s.Equal(userID, rating.UserID)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestGetByStoreAndUser_NotFound() {
	ctx := context.Background()
	storeID := uuid.New()
	userID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE store_id = $1 AND user_id = $2`)).
		WithArgs(storeID, userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	rating, err := s.repo.GetByStoreAndUser(ctx, storeID, userID)

	// Assert
	s.Nil(rating)
	s.ErrorIs(err, ErrRatingNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Fetch Tests =====================

func (s *RatingRepositoryTestSuite) TestFetch_ByStore() {
	ctx := context.Background()
	storeID := uuid.New()

	rows := ratingRows(
		entity.Rating{ID: uuid.New(), StoreID: storeID, UserID: uuid.New(), Value: 5, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		entity.Rating{ID: uuid.New(), StoreID: storeID, UserID: uuid.New(), Value: 2, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE ratings.store_id = $1 ORDER BY ratings.created_at DESC`)).
		WithArgs(storeID).
		WillReturnRows(rows)

	// Act
	ratings, err := s.repo.Fetch(ctx, entity.RatingFilter{StoreID: &storeID})

	// Assert
	s.NoError(err)
	s.Len(ratings, 2)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestFetch_ByOwnerJoinsStores() {
	ctx := context.Background()
	ownerID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`JOIN stores ON stores.id = ratings.store_id`)).
		WithArgs(ownerID).
		WillReturnRows(ratingRows())

	// Act
	ratings, err := s.repo.Fetch(ctx, entity.RatingFilter{OwnerID: &ownerID})

	// Assert
	s.NoError(err)
	s.Empty(ratings)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestFetch_EmptyResultIsNotError() {
	ctx := context.Background()
	userID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE ratings.user_id = $1`)).
		WithArgs(userID).
		WillReturnRows(ratingRows())

	// Act
	ratings, err := s.repo.Fetch(ctx, entity.RatingFilter{UserID: &userID})

	// Assert
	s.NoError(err)
	s.NotNil(ratings)
	s.Empty(ratings)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Update Tests =====================

func (s *RatingRepositoryTestSuite) TestUpdate_Success() {
	ctx := context.Background()
	rating := &entity.Rating{
		ID:      uuid.New(),
		StoreID: uuid.New(),
		UserID:  uuid.New(),
		Value:   2,
		Comment: "changed",
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "ratings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Update(ctx, rating)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestUpdate_NotFound() {
	ctx := context.Background()
	rating := &entity.Rating{ID: uuid.New(), Value: 3}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "ratings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Update(ctx, rating)

	// Assert
	s.ErrorIs(err, ErrRatingNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Delete Tests =====================

func (s *RatingRepositoryTestSuite) TestDelete_Success() {
	ctx := context.Background()
	ratingID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "ratings" WHERE id = $1`)).
		WithArgs(ratingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, ratingID)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RatingRepositoryTestSuite) TestDelete_NotFound() {
	ctx := context.Background()
	ratingID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "ratings" WHERE id = $1`)).
		WithArgs(ratingID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, ratingID)

	// Assert
	s.ErrorIs(err, ErrRatingNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Count Tests =====================

func (s *RatingRepositoryTestSuite) TestCount_Success() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "ratings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	// Act
	count, err := s.repo.Count(ctx)

	// Assert
	s.NoError(err)
	s.Equal(int64(7), count)

	s.NoError(s.mock.ExpectationsWereMet())
}
