// Package retry provides exponential backoff retry logic for transient failures.
//
// The [Do] function retries an operation with configurable max attempts,
// initial delay, and maximum delay. It is used for the connectivity probe
// against freshly deployed gateways, where cold starts and DNS propagation
// make the first requests unreliable.
package retry
