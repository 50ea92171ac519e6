package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default directory scanned for test executables
	DefaultTestPath = "."
	// DefaultConfigFile is the config file looked up in the project path
	DefaultConfigFile = "ctp.yaml"
	// DefaultEnvFile is the dotenv file looked up in the project path
	DefaultEnvFile = ".env"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".ctp"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// StoreJSON keeps the last run in a JSON file
	StoreJSON = "json"
	// StoreMySQL keeps every run in a MySQL table
	StoreMySQL = "mysql"
)

// DefaultMasks are the file name patterns of test executables
var DefaultMasks = []string{"test_*", "*_test"}

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"CMakeFiles",
	"_deps",
	"third_party",
	"vendor",
	"node_modules",
}

// Environment variables read by Load.
const (
	EnvFiles      = "CTP_FILES"
	EnvProcessors = "CTP_PROCESSORS"
	EnvStore      = "CTP_STORE"
	EnvMySQLDSN   = "CTP_MYSQL_DSN"
)
