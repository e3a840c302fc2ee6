// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/auth"
	"github.com/duskmud/duskmud/internal/core"
	"github.com/duskmud/duskmud/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container, migrates the
// schema, and opens a pool on it.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("duskmud_test"),
		postgres.WithUsername("duskmud"),
		postgres.WithPassword("duskmud"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Open(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

func newPlayer(username string) *auth.Player {
	return &auth.Player{
		Username:    username,
		Role:        access.RolePlayer,
		CurrentRoom: "spawn",
		Inventory:   []string{},
		Active:      true,
	}
}

var _ = Describe("PostgresPlayerRepository", func() {
	var pool *pgxpool.Pool
	var cleanup func()
	var repo *store.PostgresPlayerRepository

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		repo = store.NewPostgresPlayerRepository(pool, auth.NewArgon2idHasher())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Create and GetByUsername", func() {
		It("round-trips a player", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newPlayer("alice"), "password123")).To(Succeed())

			player, err := repo.GetByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(player.Username).To(Equal("alice"))
			Expect(player.Role).To(Equal(access.RolePlayer))
			Expect(player.CurrentRoom).To(Equal("spawn"))
			Expect(player.Inventory).To(BeEmpty())
			Expect(player.Active).To(BeTrue())
			Expect(player.CreatedAt).NotTo(BeZero())
			Expect(player.LastLogin).To(BeNil())
		})

		It("rejects duplicate usernames", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newPlayer("alice"), "password123")).To(Succeed())

			err := repo.Create(ctx, newPlayer("alice"), "otherpassword")
			Expect(err).To(MatchError(auth.ErrUsernameTaken))
		})

		It("matches usernames exactly, not case-insensitively", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newPlayer("alice"), "password123")).To(Succeed())

			_, err := repo.GetByUsername(ctx, "Alice")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("returns ErrNotFound for unknown usernames", func() {
			ctx := context.Background()
			_, err := repo.GetByUsername(ctx, "ghost")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("VerifyCredentials", func() {
		BeforeEach(func() {
			Expect(repo.Create(context.Background(), newPlayer("alice"), "password123")).To(Succeed())
		})

		It("accepts the correct password", func() {
			ok, err := repo.VerifyCredentials(context.Background(), "alice", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("rejects a wrong password", func() {
			ok, err := repo.VerifyCredentials(context.Background(), "alice", "wrongpassword")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("rejects unknown usernames without error", func() {
			ok, err := repo.VerifyCredentials(context.Background(), "ghost", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Updates", func() {
		BeforeEach(func() {
			Expect(repo.Create(context.Background(), newPlayer("alice"), "password123")).To(Succeed())
		})

		It("persists room, role, inventory, and active changes", func() {
			ctx := context.Background()
			Expect(repo.SetCurrentRoom(ctx, "alice", "hall")).To(Succeed())
			Expect(repo.SetRole(ctx, "alice", access.RoleAdmin)).To(Succeed())
			Expect(repo.SetInventory(ctx, "alice", []string{"lantern", "rope"})).To(Succeed())
			Expect(repo.SetActive(ctx, "alice", false)).To(Succeed())

			player, err := repo.GetByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(player.CurrentRoom).To(Equal("hall"))
			Expect(player.Role).To(Equal(access.RoleAdmin))
			Expect(player.Inventory).To(Equal([]string{"lantern", "rope"}))
			Expect(player.Active).To(BeFalse())
		})

		It("stamps the last login", func() {
			ctx := context.Background()
			Expect(repo.UpdateLastLogin(ctx, "alice")).To(Succeed())

			player, err := repo.GetByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(player.LastLogin).NotTo(BeNil())
			Expect(*player.LastLogin).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("changes which password verifies", func() {
			ctx := context.Background()
			Expect(repo.SetPassword(ctx, "alice", "newpassword")).To(Succeed())

			ok, err := repo.VerifyCredentials(ctx, "alice", "password123")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			ok, err = repo.VerifyCredentials(ctx, "alice", "newpassword")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("returns ErrNotFound for unknown usernames", func() {
			err := repo.SetCurrentRoom(context.Background(), "ghost", "hall")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("ListByCurrentRoom", func() {
		It("returns usernames sorted", func() {
			ctx := context.Background()
			for _, username := range []string{"carol", "alice", "bob"} {
				p := newPlayer(username)
				p.CurrentRoom = "hall"
				Expect(repo.Create(ctx, p, "password123")).To(Succeed())
			}
			other := newPlayer("dave")
			Expect(repo.Create(ctx, other, "password123")).To(Succeed())

			usernames, err := repo.ListByCurrentRoom(ctx, "hall")
			Expect(err).NotTo(HaveOccurred())
			Expect(usernames).To(Equal([]string{"alice", "bob", "carol"}))
		})

		It("returns nothing for an empty room", func() {
			usernames, err := repo.ListByCurrentRoom(context.Background(), "void")
			Expect(err).NotTo(HaveOccurred())
			Expect(usernames).To(BeEmpty())
		})
	})
})

var _ = Describe("PostgresSessionMirror", func() {
	var pool *pgxpool.Pool
	var cleanup func()
	var mirror *store.PostgresSessionMirror

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		mirror = store.NewPostgresSessionMirror(pool)

		// Sessions reference players, so the account must exist first.
		repo := store.NewPostgresPlayerRepository(pool, auth.NewArgon2idHasher())
		Expect(repo.Create(context.Background(), newPlayer("alice"), "password123")).To(Succeed())
	})

	AfterEach(func() {
		cleanup()
	})

	It("mirrors a login", func() {
		ctx := context.Background()
		Expect(mirror.Upsert(ctx, "alice", "tok-hash-1")).To(Succeed())

		var tokenHash string
		err := pool.QueryRow(ctx,
			`SELECT token_hash FROM sessions WHERE username = $1`, "alice").Scan(&tokenHash)
		Expect(err).NotTo(HaveOccurred())
		Expect(tokenHash).To(Equal("tok-hash-1"))
	})

	It("keeps one row per account across relogins", func() {
		ctx := context.Background()
		Expect(mirror.Upsert(ctx, "alice", "tok-hash-1")).To(Succeed())
		Expect(mirror.Upsert(ctx, "alice", "tok-hash-2")).To(Succeed())

		var count int
		Expect(pool.QueryRow(ctx,
			`SELECT count(*) FROM sessions WHERE username = $1`, "alice").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))

		var tokenHash string
		Expect(pool.QueryRow(ctx,
			`SELECT token_hash FROM sessions WHERE username = $1`, "alice").Scan(&tokenHash)).To(Succeed())
		Expect(tokenHash).To(Equal("tok-hash-2"))
	})

	It("advances last_activity on touch", func() {
		ctx := context.Background()
		Expect(mirror.Upsert(ctx, "alice", "tok-hash-1")).To(Succeed())

		var before time.Time
		Expect(pool.QueryRow(ctx,
			`SELECT last_activity FROM sessions WHERE username = $1`, "alice").Scan(&before)).To(Succeed())

		time.Sleep(10 * time.Millisecond)
		Expect(mirror.TouchActivity(ctx, "alice")).To(Succeed())

		var after time.Time
		Expect(pool.QueryRow(ctx,
			`SELECT last_activity FROM sessions WHERE username = $1`, "alice").Scan(&after)).To(Succeed())
		Expect(after).To(BeTemporally(">", before))
	})

	It("tolerates touching a missing row", func() {
		Expect(mirror.TouchActivity(context.Background(), "ghost")).To(Succeed())
	})

	It("deletes on logout and tolerates double deletes", func() {
		ctx := context.Background()
		Expect(mirror.Upsert(ctx, "alice", "tok-hash-1")).To(Succeed())
		Expect(mirror.Delete(ctx, "alice")).To(Succeed())

		var count int
		Expect(pool.QueryRow(ctx,
			`SELECT count(*) FROM sessions WHERE username = $1`, "alice").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(0))

		Expect(mirror.Delete(ctx, "alice")).To(Succeed())
	})
})

var _ = Describe("PostgresChatStore", func() {
	var cleanup func()
	var chatStore *store.PostgresChatStore

	BeforeEach(func() {
		pool, c, err := setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		cleanup = c
		chatStore = store.NewPostgresChatStore(pool)
	})

	AfterEach(func() {
		cleanup()
	})

	say := func(roomID, sender, text string) core.ChatMessage {
		return core.ChatMessage{
			ID:        core.NewULID(),
			RoomID:    roomID,
			Sender:    sender,
			Text:      text,
			CreatedAt: time.Now().UTC(),
		}
	}

	It("round-trips a room message", func() {
		ctx := context.Background()
		msg := say("hall", "alice", "hello")
		Expect(chatStore.Append(ctx, msg)).To(Succeed())

		msgs, err := chatStore.Recent(ctx, "hall", "bob", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].ID).To(Equal(msg.ID))
		Expect(msgs[0].Sender).To(Equal("alice"))
		Expect(msgs[0].Text).To(Equal("hello"))
	})

	It("returns messages oldest first and honors the limit", func() {
		ctx := context.Background()
		var last core.ChatMessage
		for _, text := range []string{"one", "two", "three", "four", "five"} {
			last = say("hall", "alice", text)
			Expect(chatStore.Append(ctx, last)).To(Succeed())
			time.Sleep(time.Millisecond) // Ensure ULID ordering
		}

		msgs, err := chatStore.Recent(ctx, "hall", "alice", 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].Text).To(Equal("three"))
		Expect(msgs[2].Text).To(Equal("five"))
		Expect(msgs[2].ID).To(Equal(last.ID))
	})

	It("hides whispers from third parties", func() {
		ctx := context.Background()
		whisper := say("hall", "alice", "psst")
		whisper.Recipient = "bob"
		Expect(chatStore.Append(ctx, whisper)).To(Succeed())

		msgs, err := chatStore.Recent(ctx, "hall", "bob", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Recipient).To(Equal("bob"))

		msgs, err = chatStore.Recent(ctx, "hall", "alice", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1), "the sender sees their own whisper")

		msgs, err = chatStore.Recent(ctx, "hall", "carol", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())
	})

	It("scopes history to the room", func() {
		ctx := context.Background()
		Expect(chatStore.Append(ctx, say("hall", "alice", "in the hall"))).To(Succeed())
		Expect(chatStore.Append(ctx, say("cellar", "bob", "in the cellar"))).To(Succeed())

		msgs, err := chatStore.Recent(ctx, "hall", "carol", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Text).To(Equal("in the hall"))
	})

	It("applies the default limit when none is given", func() {
		ctx := context.Background()
		for range core.DefaultRecentLimit + 5 {
			Expect(chatStore.Append(ctx, say("hall", "alice", "chatter"))).To(Succeed())
		}

		msgs, err := chatStore.Recent(ctx, "hall", "alice", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(core.DefaultRecentLimit))
	})
})
