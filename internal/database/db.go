package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/finance-account-api/internal/config"
)

// cloudNet is the network name registered with the MySQL driver for
// connections dialed through the Cloud SQL connector.
const cloudNet = "cloudsql"

// Store owns the connection pool and, in cloud mode, the Cloud SQL dialer
// that backs it.  Close releases both in that order.
type Store struct {
	DB     *sql.DB
	dialer *cloudsqlconn.Dialer
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	mc := driverConfig(cfg)

	s := &Store{}
	if cfg.Cloud {
		d, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithLazyRefresh())
		if err != nil {
			return nil, fmt.Errorf("cloud sql dialer: %w", err)
		}
		opts := dialOptions(cfg.IPType)
		mysql.RegisterDialContext(cloudNet, func(ctx context.Context, addr string) (net.Conn, error) {
			return d.Dial(ctx, addr, opts...)
		})
		s.dialer = d
	}

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		s.closeDialer()
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	// Pool settings
	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetConnMaxLifetime(30 * time.Minute)
	s.DB = db

	// Ping with timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return s, nil
}

// Close closes the pool first so no new connections are dialed, then the
// Cloud SQL dialer.  It is safe to call on a partially opened Store.
func (s *Store) Close() error {
	var errs []error
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pool: %w", err))
		}
	}
	if err := s.closeDialer(); err != nil {
		errs = append(errs, fmt.Errorf("close dialer: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Store) closeDialer() error {
	if s.dialer == nil {
		return nil
	}
	err := s.dialer.Close()
	s.dialer = nil
	return err
}

// driverConfig builds the go-sql-driver configuration.  parseTime and
// loc=UTC keep DATETIME columns as UTC time.Time values; ClientFoundRows
// makes RowsAffected count matched rows so an UPDATE that writes the same
// value is not mistaken for a missing row.
func driverConfig(cfg config.DBConfig) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if cfg.Cloud {
		mc.Net = cloudNet
		mc.Addr = cfg.InstanceConnectionName
	} else {
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	}
	return mc
}

func dialOptions(ipType string) []cloudsqlconn.DialOption {
	switch ipType {
	case "PRIVATE":
		return []cloudsqlconn.DialOption{cloudsqlconn.WithPrivateIP()}
	case "PSC":
		return []cloudsqlconn.DialOption{cloudsqlconn.WithPSC()}
	default:
		return []cloudsqlconn.DialOption{cloudsqlconn.WithPublicIP()}
	}
}
