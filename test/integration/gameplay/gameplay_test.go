// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package gameplay_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/api"
	"github.com/duskmud/duskmud/internal/world"
)

// errCode extracts the structured code an operation failed with.
func errCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

var _ = Describe("A new player's first session", func() {
	var (
		ctx context.Context
		st  *stack
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = newStack()
	})

	It("registers, logs in, explores, and handles items", func() {
		_, err := st.svc.Register(ctx, api.RegisterRequest{
			Username: "dana",
			Password: "password123",
			Confirm:  "password123",
		})
		Expect(err).NotTo(HaveOccurred())

		resp, err := st.svc.Login(ctx, api.LoginRequest{Username: "dana", Password: "password123"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message).To(ContainSubstring("Welcome, dana!"))
		Expect(resp.Message).To(ContainSubstring("Duskfall Plaza"))
		token := resp.Token

		msg := st.runOK(ctx, token, "north")
		Expect(msg).To(ContainSubstring("You move north."))
		Expect(msg).To(ContainSubstring("Lantern Hall"))

		Expect(st.runOK(ctx, token, "get lantern")).To(Equal("You picked up the Lantern."))
		Expect(st.runOK(ctx, token, "inventory")).To(ContainSubstring("Lantern"))

		Expect(st.runOK(ctx, token, "drop lantern")).To(Equal("You dropped the Lantern."))
		Expect(st.runOK(ctx, token, "inventory")).To(Equal("Your inventory is empty."))

		status, err := st.svc.Status(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Room).To(Equal("hall"))
		Expect(status.ActivePlayers).To(ConsistOf("dana"))
	})

	It("rejects movement through a missing exit without relocating the player", func() {
		st.seedAccount(ctx, "dana", access.RolePlayer)
		token := st.login(ctx, "dana")

		resp := st.run(ctx, token, "east")
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Message).To(Equal("You cannot move east from here."))

		status, err := st.svc.Status(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Room).To(Equal("plaza"))
	})

	It("keeps the room catalogue intact when players take items", func() {
		st.seedAccount(ctx, "dana", access.RolePlayer)
		st.seedAccount(ctx, "evan", access.RolePlayer)
		danaToken := st.login(ctx, "dana")
		evanToken := st.login(ctx, "evan")

		st.runOK(ctx, danaToken, "north")
		st.runOK(ctx, evanToken, "north")

		Expect(st.runOK(ctx, danaToken, "get lantern")).To(Equal("You picked up the Lantern."))
		Expect(st.runOK(ctx, evanToken, "get lantern")).To(Equal("You picked up the Lantern."))
	})
})

var _ = Describe("Session lifecycle", func() {
	var (
		ctx context.Context
		st  *stack
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = newStack()
		st.seedAccount(ctx, "alice", access.RolePlayer)
	})

	It("evicts the previous session when the same account logs in again", func() {
		first := st.login(ctx, "alice")
		second := st.login(ctx, "alice")
		Expect(second).NotTo(Equal(first))

		_, err := st.svc.Command(ctx, first, "look")
		Expect(errCode(err)).To(Equal("UNAUTHENTICATED"))

		Expect(st.runOK(ctx, second, "look")).To(ContainSubstring("Duskfall Plaza"))
		Expect(st.svc.ActivePlayerCount()).To(Equal(1))
	})

	It("invalidates the token on logout", func() {
		token := st.login(ctx, "alice")

		resp, err := st.svc.Logout(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message).To(Equal("Goodbye, alice!"))

		_, err = st.svc.Logout(ctx, token)
		Expect(errCode(err)).To(Equal("UNAUTHENTICATED"))
		Expect(st.svc.ActivePlayerCount()).To(BeZero())
	})
})

var _ = Describe("Account management", func() {
	var (
		ctx  context.Context
		st   *stack
		root string
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = newStack()
		st.seedAccount(ctx, "root", access.RoleSuperuser)
		st.seedAccount(ctx, "alice", access.RolePlayer)
		root = st.login(ctx, "root")
	})

	It("refuses role changes from non-superusers, including self-escalation", func() {
		alice := st.login(ctx, "alice")

		_, err := st.svc.SetRole(ctx, api.SetRoleRequest{Token: alice, Target: "alice", Role: "admin"})
		Expect(errCode(err)).To(Equal("FORBIDDEN"))

		_, err = st.svc.SetRole(ctx, api.SetRoleRequest{Token: alice, Target: "root", Role: "player"})
		Expect(errCode(err)).To(Equal("FORBIDDEN"))
	})

	It("lets a superuser promote an account", func() {
		resp, err := st.svc.SetRole(ctx, api.SetRoleRequest{Token: root, Target: "alice", Role: "worldbuilder"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message).To(Equal("Role for alice set to worldbuilder."))

		token := st.login(ctx, "alice")
		status, err := st.svc.Status(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Role).To(Equal("worldbuilder"))
	})

	It("kills the live session on deactivation and blocks logins until reactivated", func() {
		alice := st.login(ctx, "alice")

		_, err := st.svc.SetActive(ctx, api.SetActiveRequest{Token: root, Target: "alice", Active: false})
		Expect(err).NotTo(HaveOccurred())

		_, err = st.svc.Command(ctx, alice, "look")
		Expect(errCode(err)).To(Equal("UNAUTHENTICATED"))

		_, err = st.svc.Login(ctx, api.LoginRequest{Username: "alice", Password: "password123"})
		Expect(errCode(err)).To(Equal("AUTH_ACCOUNT_DISABLED"))

		_, err = st.svc.SetActive(ctx, api.SetActiveRequest{Token: root, Target: "alice", Active: true})
		Expect(err).NotTo(HaveOccurred())
		st.login(ctx, "alice")
	})

	It("rotates passwords", func() {
		_, err := st.svc.SetPassword(ctx, api.SetPasswordRequest{
			Token: root, Target: "alice", Password: "otherpassword",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = st.svc.Login(ctx, api.LoginRequest{Username: "alice", Password: "password123"})
		Expect(errCode(err)).To(Equal("AUTH_INVALID_CREDENTIALS"))

		resp, err := st.svc.Login(ctx, api.LoginRequest{Username: "alice", Password: "otherpassword"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Token).NotTo(BeEmpty())
	})
})

var _ = Describe("Room-scoped chat", func() {
	var (
		ctx   context.Context
		st    *stack
		alice string
		bob   string
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = newStack()
		st.seedAccount(ctx, "alice", access.RolePlayer)
		st.seedAccount(ctx, "bob", access.RolePlayer)
		alice = st.login(ctx, "alice")
		bob = st.login(ctx, "bob")
	})

	It("keeps say within the speaker's room", func() {
		st.runOK(ctx, bob, "north")
		st.runOK(ctx, alice, "say anyone here?")

		Expect(st.chat(ctx, alice)).To(ContainSubstring("alice: anyone here?"))
		Expect(st.chat(ctx, bob)).NotTo(ContainSubstring("anyone here?"))

		st.runOK(ctx, bob, "south")
		Expect(st.chat(ctx, bob)).To(ContainSubstring("alice: anyone here?"))
	})

	It("carries a yell exactly one exit away", func() {
		st.runOK(ctx, bob, "north")
		st.runOK(ctx, alice, "yell last call")

		Expect(st.chat(ctx, bob)).To(ContainSubstring("[YELL] last call"))

		st.runOK(ctx, bob, "east")
		Expect(st.chat(ctx, bob)).NotTo(ContainSubstring("last call"))
	})

	It("shows a whisper only to its sender and recipient", func() {
		st.seedAccount(ctx, "carol", access.RolePlayer)
		carol := st.login(ctx, "carol")

		msg := st.runOK(ctx, alice, "whisper bob meet me in the cellar")
		Expect(msg).To(Equal("You whisper to bob: meet me in the cellar"))

		Expect(st.chat(ctx, bob)).To(ContainSubstring("[WHISPER: alice → bob] meet me in the cellar"))
		Expect(st.chat(ctx, alice)).To(ContainSubstring("meet me in the cellar"))
		Expect(st.chat(ctx, carol)).NotTo(ContainSubstring("cellar"))
	})

	It("refuses to whisper across rooms or to offline players", func() {
		st.runOK(ctx, bob, "north")

		resp := st.run(ctx, alice, "whisper bob psst")
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Message).To(Equal("Player 'bob' is not in this room."))

		_, err := st.svc.Logout(ctx, bob)
		Expect(err).NotTo(HaveOccurred())

		resp = st.run(ctx, alice, "whisper bob psst")
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Message).To(Equal("Player 'bob' is not online."))
	})
})

var _ = Describe("World definition faults", func() {
	It("refuses a map whose exit points at an unknown room", func() {
		_, err := world.Load(strings.NewReader(`
schema: "1.0"
rooms:
  - id: spawn
    name: Spawn
    description: Start here.
    exits:
      north: nowhere
items: []
`))
		Expect(errCode(err)).To(Equal("WORLD_INVALID"))
	})
})
