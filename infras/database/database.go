package database

//nolint:revive
import (
	"net"
	"net/url"
	"time"
	"todolist/config"
	"todolist/shared/constant"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConnection = 10
	maxOpenConnection = 10
)

// Connection holds separate pools for reads and writes. Both may point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(config *config.Config) *Connection {
	return &Connection{
		Read:  CreateReadConn(*config),
		Write: CreateWriteConn(*config),
	}
}

// Close releases both pools.
func (c *Connection) Close() {
	for name, db := range map[string]*sqlx.DB{"read": c.Read, "write": c.Write} {
		if db == nil || (name == "read" && db == c.Write) {
			continue
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Str("name", name).Msg("Failed to close database connection")
		}
	}
}

// getDBName returns the database name with prefix if configured
func getDBName(config config.Config, baseName string) string {
	if config.DB.Prefix != "" {
		return config.DB.Prefix + baseName
	}

	return baseName
}

// CreateWriteConn creates a database connection for write access.
func CreateWriteConn(cfg config.Config) *sqlx.DB {
	return CreateConnection("write", cfg.DB.Driver, DSN(cfg.DB.Driver, cfg.DB.Write, getDBName(cfg, cfg.DB.Write.Name)), cfg.DB.MaxRetry, cfg.DB.RetryWaitTime)
}

// CreateReadConn creates a database connection for read access.
func CreateReadConn(cfg config.Config) *sqlx.DB {
	return CreateConnection("read", cfg.DB.Driver, DSN(cfg.DB.Driver, cfg.DB.Read, getDBName(cfg, cfg.DB.Read.Name)), cfg.DB.MaxRetry, cfg.DB.RetryWaitTime)
}

// DSN builds the driver specific data source name.
func DSN(driver string, db config.Database, dbName string) string {
	switch driver {
	case constant.DriverMySQL:
		mysqlConfig := mysql.NewConfig()
		mysqlConfig.User = db.Username
		mysqlConfig.Passwd = db.Password
		mysqlConfig.Net = "tcp"
		mysqlConfig.Addr = net.JoinHostPort(db.Host, db.Port)
		mysqlConfig.DBName = dbName
		mysqlConfig.ParseTime = true

		return mysqlConfig.FormatDSN()
	default:
		sslMode := db.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}

		dsn := url.URL{
			Scheme:   constant.DriverPostgres,
			User:     url.UserPassword(db.Username, db.Password),
			Host:     net.JoinHostPort(db.Host, db.Port),
			Path:     "/" + dbName,
			RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
		}

		return dsn.String()
	}
}

// CreateConnection opens a pool, retrying up to maxRetry times before giving up.
func CreateConnection(name, driver, descriptor string, maxRetry, waitTime int) *sqlx.DB {
	if driver == "" {
		driver = constant.DriverPostgres
	}

	for retry := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect(driver, descriptor)
		if err == nil {
			log.
				Info().
				Str("name", name).
				Str("driver", driver).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(maxIdleConnection)
			sqlDB.SetMaxOpenConns(maxOpenConnection)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", name).
			Str("driver", driver).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	log.Fatal().Str("name", name).Str("driver", driver).Msg("Could not connect to database")

	return nil
}
