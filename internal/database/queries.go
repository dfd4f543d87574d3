package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func (db *PgRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO accounts (handle, password_hash, role, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING handle, role, created_at, updated_at",
		params.Handle,
		params.PasswordHash,
		params.Role,
		time.Now().UTC(),
	)

	var a Account
	err := res.Scan(
		&a.Handle,
		&a.Role,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return Account{}, mapUniqueViolation(err)
	}

	return a, nil
}

func (db *PgRepository) GetAccount(ctx context.Context, handle string) (Account, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT handle, password_hash, COALESCE(avatar, ''), role, created_at, updated_at "+
			"FROM accounts WHERE handle = $1 LIMIT 1",
		handle,
	)

	var a Account
	err := row.Scan(
		&a.Handle,
		&a.PasswordHash,
		&a.Avatar,
		&a.Role,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgRepository) AccountExists(ctx context.Context, handle string) (bool, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT 1 FROM accounts WHERE handle = $1 LIMIT 1",
		handle,
	)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (db *PgRepository) UpdatePassword(ctx context.Context, handle, passwordHash string) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE handle = $1",
		handle,
		passwordHash,
		time.Now().UTC(),
	)

	return err
}

func (db *PgRepository) SearchAccounts(ctx context.Context, query string, limit int) ([]Account, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT handle, COALESCE(avatar, ''), role FROM accounts "+
			"WHERE handle ILIKE '%' || $1 || '%' LIMIT $2",
		query,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err = rows.Scan(&a.Handle, &a.Avatar, &a.Role); err != nil {
			break
		}

		accounts = append(accounts, a)
	}

	return accounts, err
}

func (db *PgRepository) SetAvatar(ctx context.Context, handle, avatar string) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE accounts SET avatar = NULLIF($2, ''), updated_at = $3 WHERE handle = $1",
		handle,
		avatar,
		time.Now().UTC(),
	)

	return err
}

func (db *PgRepository) GetBinding(ctx context.Context, handle string) (DeviceBinding, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT handle, machine_code, descriptor, bound_at FROM device_bindings "+
			"WHERE handle = $1 LIMIT 1",
		handle,
	)

	var b DeviceBinding
	err := row.Scan(
		&b.Handle,
		&b.MachineCode,
		&b.Descriptor,
		&b.BoundAt,
	)

	return b, err
}

func (db *PgRepository) GetBindingByCode(ctx context.Context, machineCode string) (DeviceBinding, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT handle, machine_code, descriptor, bound_at FROM device_bindings "+
			"WHERE lower(machine_code) = lower($1) LIMIT 1",
		machineCode,
	)

	var b DeviceBinding
	err := row.Scan(
		&b.Handle,
		&b.MachineCode,
		&b.Descriptor,
		&b.BoundAt,
	)

	return b, err
}

// BindDevice upserts the binding keyed by handle. The unique index on
// lower(machine_code) makes the "code already claimed" check and the write a
// single atomic statement: a competing bind of the same code by another
// handle surfaces as ErrCodeConflict instead of a lost update.
func (db *PgRepository) BindDevice(ctx context.Context, params BindDeviceParams) (DeviceBinding, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO device_bindings (handle, machine_code, descriptor, bound_at) "+
			"VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (handle) DO UPDATE SET machine_code = $2, descriptor = $3, bound_at = $4 "+
			"RETURNING handle, machine_code, descriptor, bound_at",
		params.Handle,
		params.MachineCode,
		params.Descriptor,
		time.Now().UTC(),
	)

	var b DeviceBinding
	err := res.Scan(
		&b.Handle,
		&b.MachineCode,
		&b.Descriptor,
		&b.BoundAt,
	)
	if err != nil {
		return DeviceBinding{}, mapUniqueViolation(err)
	}

	return b, nil
}

func (db *PgRepository) DeleteBinding(ctx context.Context, handle string) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM device_bindings WHERE handle = $1",
		handle,
	)

	return err
}

func (db *PgRepository) UpsertFriendEdge(ctx context.Context, handleA, handleB string) (FriendEdge, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO friend_edges (handle_a, handle_b, status, created_at) "+
			"VALUES ($1, $2, 'accepted', $3) "+
			"ON CONFLICT (handle_a, handle_b) DO UPDATE SET status = 'accepted' "+
			"RETURNING handle_a, handle_b, status, created_at",
		handleA,
		handleB,
		time.Now().UTC(),
	)

	var e FriendEdge
	err := res.Scan(&e.HandleA, &e.HandleB, &e.Status, &e.CreatedAt)

	return e, err
}

func (db *PgRepository) GetFriendEdge(ctx context.Context, handleA, handleB string) (FriendEdge, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT handle_a, handle_b, status, created_at FROM friend_edges "+
			"WHERE handle_a = $1 AND handle_b = $2 LIMIT 1",
		handleA,
		handleB,
	)

	var e FriendEdge
	err := row.Scan(&e.HandleA, &e.HandleB, &e.Status, &e.CreatedAt)

	return e, err
}

func (db *PgRepository) ListFriendEdges(ctx context.Context, handle string) ([]FriendEdge, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT handle_a, handle_b, status, created_at FROM friend_edges "+
			"WHERE handle_a = $1 OR handle_b = $1",
		handle,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []FriendEdge
	for rows.Next() {
		var e FriendEdge
		if err = rows.Scan(&e.HandleA, &e.HandleB, &e.Status, &e.CreatedAt); err != nil {
			break
		}

		edges = append(edges, e)
	}

	return edges, err
}

func (db *PgRepository) DeleteFriendEdge(ctx context.Context, handleA, handleB string) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM friend_edges WHERE handle_a = $1 AND handle_b = $2",
		handleA,
		handleB,
	)

	return err
}

func (db *PgRepository) CreateFriendRequest(ctx context.Context, params CreateFriendRequestParams) (FriendRequest, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO friend_requests (id, sender, recipient, message, status, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, 'pending', $5, $5) "+
			"RETURNING id, sender, recipient, message, status, created_at, updated_at",
		params.Id,
		params.Sender,
		params.Recipient,
		params.Message,
		time.Now().UTC(),
	)

	var fr FriendRequest
	err := res.Scan(
		&fr.Id,
		&fr.Sender,
		&fr.Recipient,
		&fr.Message,
		&fr.Status,
		&fr.CreatedAt,
		&fr.UpdatedAt,
	)
	if err != nil {
		return FriendRequest{}, mapUniqueViolation(err)
	}

	return fr, nil
}

func (db *PgRepository) GetFriendRequest(ctx context.Context, id string) (FriendRequest, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, sender, recipient, message, status, created_at, updated_at "+
			"FROM friend_requests WHERE id = $1 LIMIT 1",
		id,
	)

	var fr FriendRequest
	err := row.Scan(
		&fr.Id,
		&fr.Sender,
		&fr.Recipient,
		&fr.Message,
		&fr.Status,
		&fr.CreatedAt,
		&fr.UpdatedAt,
	)

	return fr, err
}

func (db *PgRepository) ListFriendRequests(ctx context.Context, handle string) ([]FriendRequest, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, sender, recipient, message, status, created_at, updated_at "+
			"FROM friend_requests WHERE sender = $1 OR recipient = $1 ORDER BY created_at DESC",
		handle,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []FriendRequest
	for rows.Next() {
		var fr FriendRequest
		if err = rows.Scan(&fr.Id, &fr.Sender, &fr.Recipient, &fr.Message, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt); err != nil {
			break
		}

		requests = append(requests, fr)
	}

	return requests, err
}

func (db *PgRepository) UpdateFriendRequestStatus(ctx context.Context, id, status string) (FriendRequest, error) {
	res := db.conn.QueryRowContext(ctx,
		"UPDATE friend_requests SET status = $2, updated_at = $3 WHERE id = $1 "+
			"RETURNING id, sender, recipient, message, status, created_at, updated_at",
		id,
		status,
		time.Now().UTC(),
	)

	var fr FriendRequest
	err := res.Scan(
		&fr.Id,
		&fr.Sender,
		&fr.Recipient,
		&fr.Message,
		&fr.Status,
		&fr.CreatedAt,
		&fr.UpdatedAt,
	)

	return fr, err
}

// AcceptFriendRequest flips the request to accepted and creates the friend
// edge in one transaction, so a request can never be marked accepted without
// its edge existing.
func (db *PgRepository) AcceptFriendRequest(ctx context.Context, id, handleA, handleB string) (FriendRequest, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return FriendRequest{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRowContext(ctx,
		"UPDATE friend_requests SET status = 'accepted', updated_at = $2 WHERE id = $1 "+
			"RETURNING id, sender, recipient, message, status, created_at, updated_at",
		id,
		time.Now().UTC(),
	)

	var fr FriendRequest
	err = res.Scan(
		&fr.Id,
		&fr.Sender,
		&fr.Recipient,
		&fr.Message,
		&fr.Status,
		&fr.CreatedAt,
		&fr.UpdatedAt,
	)
	if err != nil {
		return FriendRequest{}, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO friend_edges (handle_a, handle_b, status, created_at) "+
			"VALUES ($1, $2, 'accepted', $3) ON CONFLICT (handle_a, handle_b) DO NOTHING",
		handleA,
		handleB,
		time.Now().UTC(),
	)
	if err != nil {
		return FriendRequest{}, err
	}

	if err = tx.Commit(); err != nil {
		return FriendRequest{}, err
	}

	return fr, nil
}

func (db *PgRepository) DeleteFriendRequest(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM friend_requests WHERE id = $1",
		id,
	)

	return err
}

func (db *PgRepository) CreateConversation(ctx context.Context, params CreateConversationParams) (Conversation, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO conversations (id, name, participants, type, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) "+
			"RETURNING id, name, participants, type, created_at, updated_at",
		params.Id,
		params.Name,
		params.Participants,
		params.Type,
		time.Now().UTC(),
	)

	var c Conversation
	err := res.Scan(
		&c.Id,
		&c.Name,
		&c.Participants,
		&c.Type,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Conversation{}, mapUniqueViolation(err)
	}

	return c, nil
}

func (db *PgRepository) GetConversation(ctx context.Context, id string) (Conversation, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, name, participants, type, created_at, updated_at "+
			"FROM conversations WHERE id = $1 LIMIT 1",
		id,
	)

	var c Conversation
	err := row.Scan(
		&c.Id,
		&c.Name,
		&c.Participants,
		&c.Type,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

func (db *PgRepository) ListConversations(ctx context.Context, participantToken string) ([]Conversation, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, name, participants, type, created_at, updated_at "+
			"FROM conversations WHERE position($1 in participants) > 0 ORDER BY updated_at DESC",
		participantToken,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		if err = rows.Scan(&c.Id, &c.Name, &c.Participants, &c.Type, &c.CreatedAt, &c.UpdatedAt); err != nil {
			break
		}

		convs = append(convs, c)
	}

	return convs, err
}

func (db *PgRepository) UpdateConversation(ctx context.Context, params UpdateConversationParams) (Conversation, error) {
	res := db.conn.QueryRowContext(ctx,
		"UPDATE conversations SET name = $2, participants = $3, updated_at = $4 WHERE id = $1 "+
			"RETURNING id, name, participants, type, created_at, updated_at",
		params.Id,
		params.Name,
		params.Participants,
		time.Now().UTC(),
	)

	var c Conversation
	err := res.Scan(
		&c.Id,
		&c.Name,
		&c.Participants,
		&c.Type,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

// DeleteConversation removes a conversation and its messages as one unit.
// A partial delete (messages gone, row remaining, or the reverse) would
// orphan rows, so both statements share a transaction.
func (db *PgRepository) DeleteConversation(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = $1", id)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = $1", id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO messages (id, conversation_id, sender, sender_name, content, type, read, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7) "+
			"RETURNING id, conversation_id, sender, sender_name, content, type, read, created_at",
		params.Id,
		params.ConversationId,
		params.Sender,
		params.SenderName,
		params.Content,
		params.Type,
		time.Now().UTC(),
	)

	var m Message
	err := res.Scan(
		&m.Id,
		&m.ConversationId,
		&m.Sender,
		&m.SenderName,
		&m.Content,
		&m.Type,
		&m.Read,
		&m.CreatedAt,
	)

	return m, err
}

// GetMessages returns newest-first; callers re-order for display.
func (db *PgRepository) GetMessages(ctx context.Context, conversationId string, before int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	upper := time.Now().UTC().Add(time.Hour)
	if before > 0 {
		upper = time.Unix(before, 0).UTC()
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, conversation_id, sender, sender_name, content, type, read, created_at "+
			"FROM messages WHERE conversation_id = $1 AND created_at < $2 "+
			"ORDER BY created_at DESC LIMIT $3",
		conversationId,
		upper,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err = rows.Scan(&m.Id, &m.ConversationId, &m.Sender, &m.SenderName, &m.Content, &m.Type, &m.Read, &m.CreatedAt); err != nil {
			break
		}

		messages = append(messages, m)
	}

	return messages, err
}

func (db *PgRepository) MarkMessagesRead(ctx context.Context, conversationId, reader string) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE messages SET read = TRUE WHERE conversation_id = $1 AND sender <> $2",
		conversationId,
		reader,
	)

	return err
}

func (db *PgRepository) AppendPlay(ctx context.Context, play PlayRecord) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO play_history (handle, media_id, title, position, duration, played_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6)",
		play.Handle,
		play.MediaId,
		play.Title,
		play.Position,
		play.Duration,
		time.Now().UTC(),
	)

	return err
}

func (db *PgRepository) ListPlays(ctx context.Context, handle string, limit int) ([]PlayRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT handle, media_id, title, position, duration, played_at FROM play_history "+
			"WHERE handle = $1 ORDER BY played_at DESC LIMIT $2",
		handle,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []PlayRecord
	for rows.Next() {
		var p PlayRecord
		if err = rows.Scan(&p.Handle, &p.MediaId, &p.Title, &p.Position, &p.Duration, &p.PlayedAt); err != nil {
			break
		}

		plays = append(plays, p)
	}

	return plays, err
}

func (db *PgRepository) AddFavorite(ctx context.Context, fav Favorite) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO favorites (handle, media_id, title, added_at) VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (handle, media_id) DO NOTHING",
		fav.Handle,
		fav.MediaId,
		fav.Title,
		time.Now().UTC(),
	)

	return err
}

func (db *PgRepository) RemoveFavorite(ctx context.Context, handle, mediaId string) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM favorites WHERE handle = $1 AND media_id = $2",
		handle,
		mediaId,
	)

	return err
}

func (db *PgRepository) ListFavorites(ctx context.Context, handle string) ([]Favorite, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT handle, media_id, title, added_at FROM favorites "+
			"WHERE handle = $1 ORDER BY added_at DESC",
		handle,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favs []Favorite
	for rows.Next() {
		var f Favorite
		if err = rows.Scan(&f.Handle, &f.MediaId, &f.Title, &f.AddedAt); err != nil {
			break
		}

		favs = append(favs, f)
	}

	return favs, err
}

func (db *PgRepository) SetSkipMarker(ctx context.Context, marker SkipMarker) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO skip_markers (handle, media_id, start_pos, end_pos) VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (handle, media_id) DO UPDATE SET start_pos = $3, end_pos = $4",
		marker.Handle,
		marker.MediaId,
		marker.Start,
		marker.End,
	)

	return err
}

func (db *PgRepository) GetSkipMarker(ctx context.Context, handle, mediaId string) (SkipMarker, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT handle, media_id, start_pos, end_pos FROM skip_markers "+
			"WHERE handle = $1 AND media_id = $2 LIMIT 1",
		handle,
		mediaId,
	)

	var m SkipMarker
	err := row.Scan(&m.Handle, &m.MediaId, &m.Start, &m.End)

	return m, err
}

func (db *PgRepository) AppendSearch(ctx context.Context, rec SearchRecord) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO search_history (handle, query, searched_at) VALUES ($1, $2, $3)",
		rec.Handle,
		rec.Query,
		time.Now().UTC(),
	)

	return err
}

func (db *PgRepository) ListSearches(ctx context.Context, handle string, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT handle, query, searched_at FROM search_history "+
			"WHERE handle = $1 ORDER BY searched_at DESC LIMIT $2",
		handle,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []SearchRecord
	for rows.Next() {
		var r SearchRecord
		if err = rows.Scan(&r.Handle, &r.Query, &r.SearchedAt); err != nil {
			break
		}

		recs = append(recs, r)
	}

	return recs, err
}

func (db *PgRepository) GetSettings(ctx context.Context) ([]byte, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT blob FROM settings WHERE id = 1 LIMIT 1",
	)

	var blob []byte
	err := row.Scan(&blob)

	return blob, err
}

func (db *PgRepository) SaveSettings(ctx context.Context, blob []byte) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO settings (id, blob) VALUES (1, $1) ON CONFLICT (id) DO UPDATE SET blob = $1",
		blob,
	)

	return err
}

// PurgeAccount removes the account and every row that references it, as one
// transaction. Conversations containing the handle are removed outright,
// together with all their messages, not just the membership.
func (db *PgRepository) PurgeAccount(ctx context.Context, handle, participantToken string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM messages WHERE conversation_id IN "+
			"(SELECT id FROM conversations WHERE position($1 in participants) > 0)",
		participantToken,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM conversations WHERE position($1 in participants) > 0",
		participantToken,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM messages WHERE sender = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM friend_edges WHERE handle_a = $1 OR handle_b = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM friend_requests WHERE sender = $1 OR recipient = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM device_bindings WHERE handle = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM play_history WHERE handle = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM favorites WHERE handle = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM skip_markers WHERE handle = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM search_history WHERE handle = $1", handle)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM accounts WHERE handle = $1", handle)
	if err != nil {
		return err
	}

	return tx.Commit()
}
