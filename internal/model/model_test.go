package model

import (
    "encoding/json"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestCardJSON_DueDate(t *testing.T) {
    due := time.Date(2030, 5, 10, 0, 0, 0, 0, time.UTC)
    b, err := json.Marshal(Card{ID: "c1", CardName: "Visa", DueDate: &due})
    require.NoError(t, err)

    var m map[string]any
    require.NoError(t, json.Unmarshal(b, &m))
    assert.Equal(t, "2030-05-10", m["due_date"])
    assert.Equal(t, "Visa", m["card_name"])
    assert.Nil(t, m["account_id"])

    b, err = json.Marshal(Card{ID: "c2"})
    require.NoError(t, err)
    require.NoError(t, json.Unmarshal(b, &m))
    assert.Contains(t, m, "due_date")
    assert.Nil(t, m["due_date"])
}

func TestUserPublicHidesHash(t *testing.T) {
    u := User{ID: "u1", Username: "alice", PasswordHash: "secret-hash"}
    b, err := json.Marshal(u.Public())
    require.NoError(t, err)
    assert.JSONEq(t, `{"id":"u1","username":"alice"}`, string(b))
}
