package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type sinkConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint" jsonschema:"description=Where alerts go"`
	Token    string `yaml:"token" json:"token" secret:"true"`
}

type testConfig struct {
	Name    string      `yaml:"name" json:"name" jsonschema:"description=The name of the config"`
	Value   int         `yaml:"value" json:"value"`
	APIKey  string      `yaml:"api_key" json:"api_key" secret:"true"`
	Sink    sinkConfig  `yaml:"sink" json:"sink"`
	Backup  *sinkConfig `yaml:"backup" json:"backup"`
	ignored string
}

func (suite *UtilsTestSuite) TestToYAMLSchemaDescriptions() {
	schema, err := ToYAMLSchema(testConfig{})
	suite.NoError(err)
	suite.NotEmpty(schema)

	var result map[string]any
	suite.NoError(json.Unmarshal([]byte(schema), &result))
	suite.Contains(schema, "The name of the config")
	suite.Contains(schema, "Where alerts go")
}

func (suite *UtilsTestSuite) TestSecretFields() {
	fields := SecretFields(testConfig{ignored: "x"})
	suite.ElementsMatch([]string{"api_key", "sink.token", "backup.token"}, fields)
}

func (suite *UtilsTestSuite) TestSecretFieldsPointer() {
	fields := SecretFields(&testConfig{})
	suite.Len(fields, 3)
}

func (suite *UtilsTestSuite) TestSecretFieldsNonStruct() {
	suite.Nil(SecretFields("not a struct"))
	suite.Nil(SecretFields(nil))
}

type timedConfig struct {
	Name     string        `yaml:"display_name" json:"displayName" jsonschema:"required"`
	Optional string        `yaml:"optional_key" json:"optionalKey"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

func (suite *UtilsTestSuite) TestToYAMLSchema() {
	schema, err := ToYAMLSchema(timedConfig{})
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))

	props := result["properties"].(map[string]any)
	suite.Contains(props, "display_name")
	suite.Contains(props, "optional_key")
	suite.NotContains(props, "displayName")
	suite.ElementsMatch([]any{"display_name"}, result["required"])
	suite.Equal("string", props["timeout"].(map[string]any)["type"])
}
