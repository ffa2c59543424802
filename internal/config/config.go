package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"vendor-onboarding-service/internal/domain/directory"
)

type Config struct {
	AppPort string
	AppEnv  string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Optional static approver chains; when set, they take precedence
	// over the database-backed directory. Format:
	//   Unit=email|Name,email|Name;Other Unit=email|Name
	ApproverChains map[string][]directory.Approver
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() (*Config, error) {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		AppEnv:    getenv("APP_ENV", "development"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "vendor_onboarding"),
		MySQLUser: getenv("MYSQL_USER", "vendor_onboarding"),
		MySQLPass: getenv("MYSQL_PASS", "vendor_onboarding"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("APPROVER_CHAINS"); v != "" {
		chains, err := ParseApproverChains(v)
		if err != nil {
			// A bad value must stop startup, not silently hand the
			// directory over to the database backend.
			return nil, fmt.Errorf("APPROVER_CHAINS: %w", err)
		}
		c.ApproverChains = chains
	}
	return c, nil
}

// ParseApproverChains parses the APPROVER_CHAINS value. Tiers keep the
// order they are written in; a unit with zero valid tiers is an error
// so misconfiguration fails loudly instead of leaving a unit silently
// unapprovable.
func ParseApproverChains(raw string) (map[string][]directory.Approver, error) {
	out := map[string][]directory.Approver{}
	for _, unitSpec := range strings.Split(raw, ";") {
		unitSpec = strings.TrimSpace(unitSpec)
		if unitSpec == "" {
			continue
		}
		unit, tiers, ok := strings.Cut(unitSpec, "=")
		unit = strings.TrimSpace(unit)
		if !ok || unit == "" {
			return nil, fmt.Errorf("invalid approver chain entry %q", unitSpec)
		}
		var chain []directory.Approver
		for _, tier := range strings.Split(tiers, ",") {
			tier = strings.TrimSpace(tier)
			if tier == "" {
				continue
			}
			email, name, _ := strings.Cut(tier, "|")
			email = strings.TrimSpace(email)
			if email == "" {
				return nil, fmt.Errorf("approver chain for %q has a tier without an email", unit)
			}
			chain = append(chain, directory.Approver{
				Email:       email,
				DisplayName: strings.TrimSpace(name),
			})
		}
		if len(chain) == 0 {
			return nil, fmt.Errorf("approver chain for %q is empty", unit)
		}
		out[unit] = chain
	}
	return out, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
