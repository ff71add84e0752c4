/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	approvalWindow, err := getEnvDuration("LEDGER_APPROVAL_WINDOW", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	minInvestment, err := getEnvAmount("LEDGER_MIN_INVESTMENT", "100")
	if err != nil {
		return nil, err
	}

	maxInvestment, err := getEnvAmount("LEDGER_MAX_INVESTMENT", "10000")
	if err != nil {
		return nil, err
	}

	thresholdPct := getEnvInt("LEDGER_VOTING_THRESHOLD_PCT", 50)
	if thresholdPct <= 0 || thresholdPct > 100 {
		return nil, fmt.Errorf("LEDGER_VOTING_THRESHOLD_PCT must be in (0,100], got %d", thresholdPct)
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "escrow.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			CreateDemoData:  getEnvBool("CREATE_DEMO_DATA", false),
		},
		Ledger: models.LedgerConfig{
			DefaultVotingThresholdPct: uint(thresholdPct),
			DefaultMinInvestment:      minInvestment,
			DefaultMaxInvestment:      maxInvestment,
			ApprovalWindow:            approvalWindow,
			PlatformAuthority:         getEnvString("LEDGER_PLATFORM_AUTHORITY", "platform-admin"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvAmount(key, defaultValue string) (amount.Amount, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	amt, err := amount.Parse(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount for %s: %q (%w)", key, value, err)
	}
	return amt, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
