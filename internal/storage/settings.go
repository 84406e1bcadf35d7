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

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	keyCurrentLanguage    = "current_language"
	keyBackedUp           = "backed_up"
	keyIUnderstand        = "i_understand"
	keyBiometricOn        = "biometric_on"
	keyLightModeOn        = "light_mode_on"
	keyLastExitDate       = "last_exit_date"
	keyUnlockAttemptsLeft = "unlock_attempts_left"
	keyBaseCurrency       = "base_currency"
	keyBlockTillDate      = "block_till_date"
)

const defaultUnlockAttempts = 5

func (s *Service) getSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(queryGetSetting, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("unable to read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Service) setSetting(key, value string) error {
	if _, err := s.db.Exec(queryUpsertSetting, key, value); err != nil {
		return fmt.Errorf("unable to write setting %s: %w", key, err)
	}
	return nil
}

func (s *Service) getBool(key string) (bool, error) {
	value, ok, err := s.getSetting(key)
	if err != nil || !ok {
		return false, err
	}
	return strconv.ParseBool(value)
}

func (s *Service) setBool(key string, v bool) error {
	return s.setSetting(key, strconv.FormatBool(v))
}

func (s *Service) getTime(key string) (time.Time, error) {
	value, ok, err := s.getSetting(key)
	if err != nil || !ok {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, value)
}

func (s *Service) setTime(key string, t time.Time) error {
	return s.setSetting(key, t.UTC().Format(time.RFC3339Nano))
}

func (s *Service) CurrentLanguage() (string, error) {
	value, _, err := s.getSetting(keyCurrentLanguage)
	return value, err
}

func (s *Service) SetCurrentLanguage(tag string) error {
	return s.setSetting(keyCurrentLanguage, tag)
}

func (s *Service) IsBackedUp() (bool, error) {
	return s.getBool(keyBackedUp)
}

func (s *Service) SetBackedUp(v bool) error {
	return s.setBool(keyBackedUp, v)
}

func (s *Service) IUnderstand() (bool, error) {
	return s.getBool(keyIUnderstand)
}

func (s *Service) SetIUnderstand(v bool) error {
	return s.setBool(keyIUnderstand, v)
}

func (s *Service) IsBiometricOn() (bool, error) {
	return s.getBool(keyBiometricOn)
}

func (s *Service) SetBiometricOn(v bool) error {
	return s.setBool(keyBiometricOn, v)
}

func (s *Service) IsLightModeOn() (bool, error) {
	return s.getBool(keyLightModeOn)
}

func (s *Service) SetLightModeOn(v bool) error {
	return s.setBool(keyLightModeOn, v)
}

func (s *Service) LastExitDate() (time.Time, error) {
	return s.getTime(keyLastExitDate)
}

func (s *Service) SetLastExitDate(t time.Time) error {
	return s.setTime(keyLastExitDate, t)
}

// UnlockAttemptsLeft reports the remaining PIN attempts, starting from the
// default allowance when nothing is stored yet.
func (s *Service) UnlockAttemptsLeft() (int, error) {
	value, ok, err := s.getSetting(keyUnlockAttemptsLeft)
	if err != nil {
		return 0, err
	}
	if !ok {
		return defaultUnlockAttempts, nil
	}
	return strconv.Atoi(value)
}

func (s *Service) SetUnlockAttemptsLeft(n int) error {
	return s.setSetting(keyUnlockAttemptsLeft, strconv.Itoa(n))
}

func (s *Service) BaseCurrency() (string, error) {
	value, _, err := s.getSetting(keyBaseCurrency)
	return value, err
}

func (s *Service) SetBaseCurrency(code string) error {
	return s.setSetting(keyBaseCurrency, code)
}

func (s *Service) BlockTillDate() (time.Time, error) {
	return s.getTime(keyBlockTillDate)
}

func (s *Service) SetBlockTillDate(t time.Time) error {
	return s.setTime(keyBlockTillDate, t)
}

// ClearAll wipes every stored setting. Used on wallet logout.
func (s *Service) ClearAll() error {
	if _, err := s.db.Exec(queryClearSettings); err != nil {
		return fmt.Errorf("unable to clear settings: %w", err)
	}
	return nil
}
