package database

import (
	"log"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// InitSQLX 在 gorm 的底层连接上构建 sqlx 句柄，供统计类原生 SQL 查询使用
func InitSQLX(db *gorm.DB) *sqlx.DB {
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB for sqlx: %v", err)
	}
	return sqlx.NewDb(sqlDB, "postgres")
}
