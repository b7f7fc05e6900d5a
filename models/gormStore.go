package models

import (
	"context"
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jadygoy/cafe_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the MySQL-backed ReportStore and UserStore. Natural key
// uniqueness comes from the unique indexes on daily_reports.date and
// users.username.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (s *GormStore) CreateReport(ctx context.Context, report *DailyReport) error {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return utils.ErrorDuplicateReportDate
		}
		return err
	}
	return nil
}

func (s *GormStore) ListReports(ctx context.Context) ([]*DailyReport, error) {
	var results []*DailyReport
	if err := s.db.WithContext(ctx).
		Order("date DESC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *GormStore) FindReportByDate(ctx context.Context, date string) (*DailyReport, error) {
	var result DailyReport
	err := s.db.WithContext(ctx).Where("date = ?", date).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (s *GormStore) ReplaceReport(ctx context.Context, date string, report *DailyReport) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing DailyReport
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("date = ?", date).
			Take(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		report.ID = existing.ID
		report.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Select("*").Updates(report).Error
	})
}

func (s *GormStore) DeleteReport(ctx context.Context, date string) error {
	result := s.db.WithContext(ctx).Where("date = ?", date).Delete(&DailyReport{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return utils.ErrorDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	var result User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]*User, error) {
	var results []*User
	if err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
