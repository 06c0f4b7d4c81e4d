package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, id, name string) {
	t.Helper()
	u := &User{
		ID:           id,
		Email:        id + "@example.com",
		FullName:     name,
		PasswordHash: "x",
		CreatedAt:    1000,
	}
	if err := db.CreateUser(u); err != nil {
		t.Fatal(err)
	}
}

func seedConversation(t *testing.T, db *DB, id string, isGroup bool, userIDs ...string) {
	t.Helper()
	c := &Conversation{ID: id, IsGroup: isGroup, CreatedBy: userIDs[0], CreatedAt: 1000}
	key := ""
	if !isGroup {
		key = DMKey(userIDs[0], userIDs[1])
	}
	if err := db.CreateConversation(c, key, userIDs); err != nil {
		t.Fatal(err)
	}
}

func seedMessage(t *testing.T, db *DB, id, convID, senderID, content string, ts int64) {
	t.Helper()
	m := &Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       senderID,
		Kind:           KindText,
		Content:        content,
		CreatedAt:      ts,
	}
	if err := db.InsertMessage(m); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestUserRoundTripWithProfile(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice Lima")

	u, err := db.GetUser("u1")
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || u.FullName != "Alice Lima" {
		t.Fatalf("GetUser = %+v", u)
	}
	if u.Profile != nil {
		t.Error("fresh user should have no profile")
	}

	p := &Profile{UserID: "u1", Username: "alice", Bio: "hello", CreatedAt: 1100}
	if err := db.CreateProfile(p); err != nil {
		t.Fatal(err)
	}
	u, err = db.GetUser("u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Profile == nil || u.Profile.Username != "alice" {
		t.Fatalf("profile not attached: %+v", u.Profile)
	}

	// Duplicate username must be rejected.
	seedUser(t, db, "u2", "Bob")
	if err := db.CreateProfile(&Profile{UserID: "u2", Username: "alice"}); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestUpdateProfileKeepsAvatarWhenEmpty(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	if err := db.CreateProfile(&Profile{UserID: "u1", Username: "alice", AvatarURL: "http://x/a.png"}); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateProfile("u1", "new bio", "2000-01-01", ""); err != nil {
		t.Fatal(err)
	}
	u, _ := db.GetUser("u1")
	if u.Profile.AvatarURL != "http://x/a.png" {
		t.Errorf("avatar = %q, want kept", u.Profile.AvatarURL)
	}
	if u.Profile.Bio != "new bio" {
		t.Errorf("bio = %q", u.Profile.Bio)
	}

	if err := db.UpdateProfile("u1", "new bio", "2000-01-01", "http://x/b.png"); err != nil {
		t.Fatal(err)
	}
	u, _ = db.GetUser("u1")
	if u.Profile.AvatarURL != "http://x/b.png" {
		t.Errorf("avatar = %q, want replaced", u.Profile.AvatarURL)
	}
}

func TestSearchUsersExcludesSelf(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice Lima")
	seedUser(t, db, "u2", "alice costa")
	seedUser(t, db, "u3", "Bob")

	users, err := db.SearchUsers("alice", "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != "u2" {
		t.Fatalf("search = %+v, want only u2", users)
	}
}

func TestDMKeyIsOrderIndependent(t *testing.T) {
	if DMKey("a", "b") != DMKey("b", "a") {
		t.Error("DMKey must be order independent")
	}
	if DMKey("a", "b") != "a:b" {
		t.Errorf("DMKey = %q", DMKey("a", "b"))
	}
}

func TestDirectConversationUniquePerPair(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")

	// Same pair in either order must collide on dm_key.
	c := &Conversation{ID: "c2", CreatedBy: "u2", CreatedAt: 2000}
	err := db.CreateConversation(c, DMKey("u2", "u1"), []string{"u2", "u1"})
	if err == nil {
		t.Fatal("duplicate direct conversation should fail")
	}

	conv, err := db.FindDirectConversation("u2", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if conv == nil || conv.ID != "c1" {
		t.Fatalf("FindDirectConversation = %+v", conv)
	}
	if len(conv.Participants) != 2 {
		t.Errorf("participants = %d, want 2", len(conv.Participants))
	}
}

func TestSoftDeleteKeepsRow(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")
	seedMessage(t, db, "m1", "c1", "u1", "hi", 2000)

	if err := db.SoftDeleteMessage("m1", 3000); err != nil {
		t.Fatal(err)
	}
	m, err := db.GetMessage("m1")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("soft-deleted message must still be readable")
	}
	if m.DeletedAt != 3000 {
		t.Errorf("deleted_at = %d, want 3000", m.DeletedAt)
	}

	// Deleted messages are excluded from latest and attachments.
	last, err := db.LatestMessage("c1")
	if err != nil {
		t.Fatal(err)
	}
	if last != nil {
		t.Errorf("LatestMessage = %+v, want nil", last)
	}
}

func TestMarkMessagesReadIsIdempotent(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")
	seedMessage(t, db, "m1", "c1", "u1", "hi", 2000)

	if err := db.MarkMessagesRead("u2", []string{"m1"}, 2500); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkMessagesRead("u2", []string{"m1"}, 9999); err != nil {
		t.Fatal(err)
	}

	msgs, err := db.ListConversationMessages("c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || len(msgs[0].Reads) != 1 {
		t.Fatalf("reads = %+v, want exactly one", msgs[0].Reads)
	}
	if msgs[0].Reads[0].ReadAt != 2500 {
		t.Errorf("read_at = %d, want original 2500", msgs[0].Reads[0].ReadAt)
	}
}

func TestToggleReaction(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")
	seedMessage(t, db, "m1", "c1", "u1", "hi", 2000)

	added, err := db.ToggleReaction("m1", "u2", "❤️", 2100)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("first toggle should add")
	}
	added, err = db.ToggleReaction("m1", "u2", "❤️", 2200)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("second toggle should remove")
	}

	// Different emoji from the same user coexists.
	if _, err := db.ToggleReaction("m1", "u2", "👍", 2300); err != nil {
		t.Fatal(err)
	}
	msgs, _ := db.ListConversationMessages("c1")
	if len(msgs[0].Reactions) != 1 || msgs[0].Reactions[0].Emoji != "👍" {
		t.Fatalf("reactions = %+v", msgs[0].Reactions)
	}
}

func TestConversationHideLedger(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")

	if err := db.UpsertConversationHide("c1", "u1", 5000); err != nil {
		t.Fatal(err)
	}
	h, err := db.GetConversationHide("c1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if h == nil || h.VisibleFrom != 0 {
		t.Fatalf("hide = %+v, want pending (visible_from=0)", h)
	}

	if err := db.SetVisibleFrom("c1", "u1", 6000); err != nil {
		t.Fatal(err)
	}
	h, _ = db.GetConversationHide("c1", "u1")
	if h.VisibleFrom != 6000 {
		t.Errorf("visible_from = %d, want 6000", h.VisibleFrom)
	}

	// Re-opening an already open entry must not move the cutoff.
	if err := db.SetVisibleFrom("c1", "u1", 7000); err != nil {
		t.Fatal(err)
	}
	h, _ = db.GetConversationHide("c1", "u1")
	if h.VisibleFrom != 6000 {
		t.Errorf("visible_from = %d, cutoff must stay at first reopen", h.VisibleFrom)
	}

	// Re-hiding resets the cutoff back to fully hidden.
	if err := db.UpsertConversationHide("c1", "u1", 8000); err != nil {
		t.Fatal(err)
	}
	h, _ = db.GetConversationHide("c1", "u1")
	if h.VisibleFrom != 0 || h.HiddenAt != 8000 {
		t.Errorf("after re-hide = %+v, want pending with hidden_at=8000", h)
	}
}

func TestReopenPendingHidesTouchesAllUsers(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedUser(t, db, "u3", "Carol")
	seedConversation(t, db, "c1", true, "u1", "u2", "u3")

	if err := db.UpsertConversationHide("c1", "u1", 5000); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertConversationHide("c1", "u2", 5000); err != nil {
		t.Fatal(err)
	}
	if err := db.SetVisibleFrom("c1", "u2", 5500); err != nil {
		t.Fatal(err)
	}

	if err := db.ReopenPendingHides("c1", 6000); err != nil {
		t.Fatal(err)
	}
	h1, _ := db.GetConversationHide("c1", "u1")
	h2, _ := db.GetConversationHide("c1", "u2")
	if h1.VisibleFrom != 6000 {
		t.Errorf("u1 visible_from = %d, want 6000", h1.VisibleFrom)
	}
	if h2.VisibleFrom != 5500 {
		t.Errorf("u2 visible_from = %d, earlier cutoff must be preserved", h2.VisibleFrom)
	}
}

func TestMessageHideIsIdempotent(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")
	seedMessage(t, db, "m1", "c1", "u1", "hi", 2000)

	for i := 0; i < 3; i++ {
		if err := db.UpsertMessageHide("m1", "u2", int64(3000+i)); err != nil {
			t.Fatal(err)
		}
	}
	n, err := db.CountMessageHides("m1", "u2")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("hide rows = %d, want 1", n)
	}

	hidden, err := db.HiddenMessageIDs("c1", "u2")
	if err != nil {
		t.Fatal(err)
	}
	if !hidden["m1"] || len(hidden) != 1 {
		t.Errorf("hidden = %v", hidden)
	}
}

func TestCountUnread(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")
	for i := 0; i < 5; i++ {
		seedMessage(t, db, fmt.Sprintf("m%d", i), "c1", "u1", "hi", int64(2000+i))
	}
	seedMessage(t, db, "mine", "c1", "u2", "reply", 2010)

	n, err := db.CountUnread("c1", "u2", 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("unread = %d, want 5 (own message excluded)", n)
	}

	// Reads, hides, deletions and the cutoff all shrink the count.
	if err := db.MarkMessagesRead("u2", []string{"m0"}, 2100); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertMessageHide("m1", "u2", 2100); err != nil {
		t.Fatal(err)
	}
	if err := db.SoftDeleteMessage("m2", 2100); err != nil {
		t.Fatal(err)
	}
	n, _ = db.CountUnread("c1", "u2", 0)
	if n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}
	n, _ = db.CountUnread("c1", "u2", 2004)
	if n != 1 {
		t.Errorf("unread with cutoff = %d, want 1", n)
	}
}

func TestTypingSignals(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")

	if err := db.UpsertTyping("c1", "u1", 5000); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertTyping("c1", "u2", 3000); err != nil {
		t.Fatal(err)
	}

	ids, err := db.ActiveTypists("c1", 4000)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "u1" {
		t.Fatalf("typists = %v, want [u1]", ids)
	}

	// Refresh extends the signal instead of inserting a second row.
	if err := db.UpsertTyping("c1", "u2", 6000); err != nil {
		t.Fatal(err)
	}
	ids, _ = db.ActiveTypists("c1", 4000)
	if len(ids) != 2 {
		t.Fatalf("typists = %v, want both", ids)
	}

	n, err := db.PruneTyping(5500)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
}

func TestThemePartialUpdate(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")

	th, err := db.GetTheme("c1")
	if err != nil {
		t.Fatal(err)
	}
	if th != nil {
		t.Fatal("theme should start unset")
	}

	if err := db.UpsertTheme("c1", "#111", "#eee", 2000); err != nil {
		t.Fatal(err)
	}
	// Empty field keeps the stored value.
	if err := db.UpsertTheme("c1", "", "#fff", 2100); err != nil {
		t.Fatal(err)
	}
	th, _ = db.GetTheme("c1")
	if th.BgColor != "#111" || th.TextColor != "#fff" {
		t.Errorf("theme = %+v", th)
	}
}

func TestListConversationMessagesOrder(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "Alice")
	seedUser(t, db, "u2", "Bob")
	seedConversation(t, db, "c1", false, "u1", "u2")
	seedMessage(t, db, "m2", "c1", "u1", "second", 3000)
	seedMessage(t, db, "m1", "c1", "u1", "first", 2000)

	msgs, err := db.ListConversationMessages("c1")
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, 0, len(msgs))
	for _, m := range msgs {
		got = append(got, m.Content)
	}
	if strings.Join(got, ",") != "first,second" {
		t.Errorf("order = %v", got)
	}
	if msgs[0].SenderName != "Alice" {
		t.Errorf("sender name = %q", msgs[0].SenderName)
	}
}
