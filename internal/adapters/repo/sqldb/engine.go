package sqldb

import (
	"fmt"
	"os"
	"strings"
)

type Engine string

const (
	SqliteEngine   Engine = "sqlite"
	PostgresEngine Engine = "postgres"
	MysqlEngine    Engine = "mysql"

	// EngineEnv overrides the configured engine. Tests use it to run the store
	// suite against postgres or mysql containers.
	EngineEnv      = "BANK_STORE_ENGINE"
	PostgresDsnEnv = "BANK_STORE_POSTGRES_DSN"
	MysqlDsnEnv    = "BANK_STORE_MYSQL_DSN"

	sqliteFileName = "bank.db"
)

func ParseEngine(raw string) (Engine, error) {
	switch value := Engine(strings.ToLower(strings.TrimSpace(raw))); value {
	case "":
		return SqliteEngine, nil
	case SqliteEngine, PostgresEngine, MysqlEngine:
		return value, nil
	default:
		return "", fmt.Errorf("unsupported store engine %q", raw)
	}
}

func engineFromEnv() Engine {
	kind := strings.TrimSpace(os.Getenv(EngineEnv))
	if kind == "" {
		return ""
	}

	engine, err := ParseEngine(kind)
	if err != nil {
		return SqliteEngine
	}
	return engine
}

// resolveEngine prefers the environment override, then the configured value,
// then sqlite.
func resolveEngine(configured Engine) Engine {
	if engine := engineFromEnv(); engine != "" {
		return engine
	}
	if configured != "" {
		return configured
	}
	return SqliteEngine
}

func dsnFromEnv(engine Engine) string {
	switch engine {
	case PostgresEngine:
		return os.Getenv(PostgresDsnEnv)
	case MysqlEngine:
		return os.Getenv(MysqlDsnEnv)
	default:
		return ""
	}
}
