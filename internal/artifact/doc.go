// Package artifact holds the reviewable mapping file that sits between
// extraction and application.
//
// An extract run writes one file; a reviewer edits it (keys, translations,
// approval) and the apply step reloads and validates it. Nothing is applied
// unless its entry has approved: true.
//
// # Schema Overview
//
//	version: "1"
//	generated_at: 2026-10-17T09:30:00Z
//	root: .
//	locales: [zh, en]
//	categories:
//	  button:
//	    reuse:
//	      - key: save
//	        source_text: 保存
//	        literal: '''保存'''
//	        source_locale: zh
//	        target_text: {en: Save, zh: 保存}
//	        file: lib/a.dart
//	        line: 10
//	        column: 13
//	        confidence: 1
//	        pattern: button_child
//	        approved: false
//	    create:
//	      - key: deleteAll
//	        source_text: 删除全部
//	        literal: '''删除全部'''
//	        source_locale: zh
//	        target_text: {en: 删除全部, zh: 删除全部}
//	        needs_translation: [en]
//	        ...
//
// Categories are candidate context tags. The list an entry sits in decides
// its variant (see Change).
//
// # Validation
//
// Validate checks the file against the catalog and the source tree:
//
//   - version and required fields per variant
//   - reuse keys exist in the catalog; create entries carry every locale
//   - one key never maps to two different texts or actions
//   - no two entries point at the same file position
//   - the literal is still on its line (otherwise stale, or already applied
//     when the accessor call for the key is there instead)
package artifact
