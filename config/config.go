/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config holds the pool and client configuration structs, loaded via
// github.com/spf13/viper the way the teacher's config/components load their
// defaults: a defaults-first JSON/YAML blob unmarshalled with mapstructure
// tags, overridable by file or environment. Every pool, response-handler,
// stats, and client-level tunable is a field here.
package config

import (
	"bytes"
	"time"

	"github.com/spf13/viper"
)

// PoolConfig configures a single destination's channel pool.
type PoolConfig struct {
	MaxConnectionsPerNode int `mapstructure:"maxConnectionsPerNode"`

	ConnectTimeoutMillis int `mapstructure:"connectTimeoutMillis"`
	WriteTimeoutMillis   int `mapstructure:"writeTimeoutMillis"`

	// CloseChannelTimeMillis < 0 never ages a connection out, 0 closes
	// after a single use, > 0 closes after that many milliseconds.
	CloseChannelTimeMillis int64 `mapstructure:"closeChannelTimeMillis"`

	StaleRequestTimeoutMins     int `mapstructure:"staleRequestTimeoutMins"`
	StaleRequestCleanupFreqMins int `mapstructure:"staleRequestCleanupFreqMins"`

	// WaitingWritesQueueCap <= 0 means unbounded (the default); > 0 fails
	// new waiters past capacity with errors.QueueFull.
	WaitingWritesQueueCap int `mapstructure:"waitingWritesQueueCap"`
}

func (c PoolConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMillis) * time.Millisecond
}

func (c PoolConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMillis) * time.Millisecond
}

func (c PoolConfig) CloseChannelTime() time.Duration {
	return time.Duration(c.CloseChannelTimeMillis) * time.Millisecond
}

func (c PoolConfig) StaleRequestTimeout() time.Duration {
	return time.Duration(c.StaleRequestTimeoutMins) * time.Minute
}

func (c PoolConfig) StaleRequestCleanupFreq() time.Duration {
	return time.Duration(c.StaleRequestCleanupFreqMins) * time.Minute
}

// ResponseHandlerConfig carries the response-callback dispatch settings so a
// config file round-trips. No component in this module reads them: there is
// no offload pool, and completion callbacks run on the pool's read goroutine
// (or on the caller's goroutine for an immediate failure).
type ResponseHandlerConfig struct {
	CorePoolSize       int   `mapstructure:"responseHandlerCorePoolSize"`
	MaxPoolSize        int   `mapstructure:"responseHandlerMaxPoolSize"`
	KeepAliveMillis    int64 `mapstructure:"responseHandlerKeepAliveTime"`
	MaxWaitingQueueCap int   `mapstructure:"responseHandlerMaxWaitingQueueSize"`
}

// StatsConfig configures the rolling statistics tracker.
type StatsConfig struct {
	RequestStatisticsWindowMillis int64   `mapstructure:"requestStatisticsWindow"`
	RefreshIntervalMillis         int64   `mapstructure:"statisticsRefreshInterval"`
	OutlierMultiplier             float64 `mapstructure:"outlierMultiplier"`
	OutlierConstant               float64 `mapstructure:"outlierConstant"`
}

func (c StatsConfig) Window() time.Duration {
	return time.Duration(c.RequestStatisticsWindowMillis) * time.Millisecond
}

func (c StatsConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMillis) * time.Millisecond
}

// ClientConfig is the top-level configuration for a NetworkClient.
type ClientConfig struct {
	Pool            PoolConfig            `mapstructure:"pool"`
	ResponseHandler ResponseHandlerConfig `mapstructure:"responseHandler"`
	Stats           StatsConfig           `mapstructure:"stats"`

	// DarkCanaryServiceName optionally names a mirror destination for shadow
	// traffic. Out of core scope; carried as a field so a config file
	// round-trips even though the core client does not act on it.
	DarkCanaryServiceName string `mapstructure:"darkCanaryServiceName"`

	// MaxRetry is a retry budget carried for configuration round-trips.
	// netclient does not read it: SendRequest and SendRequestT take their
	// retry budget as an explicit maxRetry argument.
	MaxRetry int `mapstructure:"maxRetry"`

	// DuplicatesOk is carried for configuration round-trips; the default
	// balancer (balancer.NewRoundRobin) does not read it.
	DuplicatesOk bool `mapstructure:"duplicatesOk"`
}

var defaultConfig = []byte(`
pool:
  maxConnectionsPerNode: 8
  connectTimeoutMillis: 2000
  writeTimeoutMillis: 1000
  closeChannelTimeMillis: -1
  staleRequestTimeoutMins: 5
  staleRequestCleanupFreqMins: 1
  waitingWritesQueueCap: 0
responseHandler:
  responseHandlerCorePoolSize: 4
  responseHandlerMaxPoolSize: 32
  responseHandlerKeepAliveTime: 60000
  responseHandlerMaxWaitingQueueSize: 1024
stats:
  requestStatisticsWindow: 60000
  statisticsRefreshInterval: 1000
  outlierMultiplier: 2.0
  outlierConstant: 1.0
darkCanaryServiceName: ""
maxRetry: 0
duplicatesOk: false
`)

// Defaults returns a ClientConfig populated from this module's built-in
// defaults, the way the teacher's config/components seed a viper instance
// with a defaults-first blob before any file/env override is applied.
func Defaults() (ClientConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return ClientConfig{}, err
	}

	var c ClientConfig
	if err := v.Unmarshal(&c); err != nil {
		return ClientConfig{}, err
	}
	return c, nil
}

// Load merges file/env overrides from v on top of this module's defaults and
// unmarshals the result. v is expected to already have AddConfigPath/
// SetConfigName/ReadInConfig (or environment bindings) applied by the
// caller; Load only supplies the default layer and the final Unmarshal.
func Load(v *viper.Viper) (ClientConfig, error) {
	dv := viper.New()
	dv.SetConfigType("yaml")
	if err := dv.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return ClientConfig{}, err
	}

	for _, key := range dv.AllKeys() {
		v.SetDefault(key, dv.Get(key))
	}

	var c ClientConfig
	if err := v.Unmarshal(&c); err != nil {
		return ClientConfig{}, err
	}
	return c, nil
}
