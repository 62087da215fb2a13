package config

import (
	"os"
	"strconv"
	"strings"
)

const DATABASE_TYPE = "GFLOW_DATABASE_TYPE"
const DATABASE_URL = "GFLOW_DATABASE_URL"
const DATABASE_SQLLITE_FILE_NAME = "GFLOW_DATABASE_SQLLITE_FILE_NAME"
const REDIS_ADDR = "GFLOW_REDIS_ADDR"
const SERVER_WEB_PORT = "GFLOW_SERVER_WEB_PORT"
const SHARE_BASE_URL = "GFLOW_SHARE_BASE_URL" //base url share links are built on, defaults to the request host
const STORAGE_KEY = "GFLOW_STORAGE_KEY"       //key the edited workflow is stored under
const RESET_ON_START = "GFLOW_RESET_ON_START" //overwrite the stored workflow with the starting one
const API_KEY_HASH = "GFLOW_API_KEY_HASH"     //bcrypt hash of the X-API-Key, api is open when unset
const LOG_LEVEL = "GFLOW_LOG_LEVEL"

const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"
const DATABASE_TYPE_REDIS = "REDIS"
const DATABASE_TYPE_MEMORY = "MEMORY"

func GetSystemSettingInteger(settingKey string) int {
	val := GetSystemSettingString(settingKey)
	if val != "" {
		intValue, _ := strconv.Atoi(val)
		return intValue
	}
	return 0
}

// GetSystemSettingBool treats unset or unparsable values as false.
func GetSystemSettingBool(settingKey string) bool {
	val, err := strconv.ParseBool(GetSystemSettingString(settingKey))
	if err != nil {
		return false
	}
	return val
}

func GetSystemSettingString(settingKey string) string {
	val := os.Getenv(settingKey)
	if val != "" {
		if settingKey == DATABASE_TYPE {
			return strings.ToUpper(val)
		}
		return val
	}
	if settingKey == DATABASE_TYPE {
		return DATABASE_TYPE_SQLLITE
	}
	if settingKey == SERVER_WEB_PORT {
		return "8080"
	}
	if settingKey == DATABASE_SQLLITE_FILE_NAME {
		return "./designer.db"
	}
	if settingKey == REDIS_ADDR {
		return "localhost:6379"
	}
	if settingKey == STORAGE_KEY {
		return "workflow"
	}
	if settingKey == LOG_LEVEL {
		return "INFO"
	}
	return ""
}
