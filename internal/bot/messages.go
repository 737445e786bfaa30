// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

// User-facing messages. The bot speaks Traditional Chinese, matching its
// audience.
const (
	msgJoinGate      = "🔐 此群尚未授權\n請管理員輸入 /authcode 授權"
	msgNotAuthorized = "❌ 此群組未授權"
	msgNoContainer   = "請在群組使用"
	msgNotGroup      = "非群組"
	msgBadCode       = "授權碼錯誤"
	msgAuthorized    = "✅ 群組已授權"
	msgGroupAdded    = "✅ 已加入授權名單"
	msgGroupRemoved  = "🗑 已移除授權"
	msgAdminAdded    = "已新增管理員"
	msgApproved      = "✅ 已核准此群組"
	msgRejected      = "🚫 已拒絕此群組"
	msgNotPending    = "此群組不在待審核名單"
	msgNoPending     = "目前沒有待審核群組"
)
