package authsmith

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengeRecordVersionV1 = 1

var (
	errChallengeNotFound         = errors.New("challenge record not found")
	errChallengeCodeMismatch     = errors.New("challenge code mismatch")
	errChallengeAttemptsExceeded = errors.New("challenge attempts exceeded")
	errChallengeRedisUnavailable = errors.New("challenge redis unavailable")
)

// verificationChallenge is the stored form of a live challenge. The plaintext
// code never reaches Redis; only its hash does.
type verificationChallenge struct {
	CodeHash  [32]byte
	ExpiresAt int64
	Attempts  uint16
}

// challengeStore keeps at most one live challenge per account by keying
// records on the account identifier: Save overwrites any previous record,
// which is exactly the supersede-on-reissue the lifecycle requires.
type challengeStore struct {
	redis  *redis.Client
	prefix string
}

func newChallengeStore(redisClient *redis.Client, prefix string) *challengeStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &challengeStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *challengeStore) key(accountID string) string {
	return s.prefix + ":" + accountID
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *challengeStore) Save(
	ctx context.Context,
	accountID string,
	record *verificationChallenge,
	ttl time.Duration,
) error {
	encoded, err := encodeVerificationChallenge(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(accountID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}

	return nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *challengeStore) Delete(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, s.key(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
	}
	return nil
}

// Consume describes the consume operation and its observable behavior.
//
// Consume may return an error when input validation, dependency calls, or security checks fail.
// Consume does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// On an exact hash match the record is deleted atomically and nil is
// returned. A mismatch leaves the live record in place (unless maxAttempts
// is positive and the attempt budget is spent, in which case the record is
// destroyed). Absent or expired records report errChallengeNotFound.
func (s *challengeStore) Consume(
	ctx context.Context,
	accountID string,
	providedHash [32]byte,
	maxAttempts int,
) error {
	const maxRetries = 4
	key := s.key(accountID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeVerificationChallenge(data)
			if err != nil {
				return err
			}

			now := time.Now()
			if now.Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeNotFound
			}

			if subtle.ConstantTimeCompare(record.CodeHash[:], providedHash[:]) != 1 {
				if maxAttempts <= 0 {
					// No attempt cap: a wrong guess never mutates or
					// consumes the live challenge.
					return errChallengeCodeMismatch
				}

				record.Attempts++
				if int(record.Attempts) >= maxAttempts {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return errChallengeAttemptsExceeded
				}

				ttl := time.Until(time.Unix(record.ExpiresAt, 0))
				if ttl <= 0 {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return errChallengeNotFound
				}

				updated, err := encodeVerificationChallenge(record)
				if err != nil {
					return err
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeCodeMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return errChallengeNotFound
			case errors.Is(err, errChallengeNotFound),
				errors.Is(err, errChallengeCodeMismatch),
				errors.Is(err, errChallengeAttemptsExceeded):
				return err
			default:
				return fmt.Errorf("%w: %v", errChallengeRedisUnavailable, err)
			}
		}

		return nil
	}

	return errChallengeNotFound
}

func encodeVerificationChallenge(record *verificationChallenge) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(challengeRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	buf.Write(record.CodeHash[:])

	return buf.Bytes(), nil
}

func decodeVerificationChallenge(data []byte) (*verificationChallenge, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != challengeRecordVersionV1 {
		return nil, errors.New("invalid challenge record version")
	}

	record := &verificationChallenge{}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(reader, record.CodeHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
