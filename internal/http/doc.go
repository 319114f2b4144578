// Package http exposes the room scheduling services over JSON.
//
// Sessions are opened without a token and return one in the body, the
// `X-Session-Token` header and a `session_token` cookie:
//   - POST /sessions/admin {"passkey"}
//   - POST /sessions/teacher {"email","name"}: 201 with a token when the
//     account is approved, 202 when the address was just registered and 403
//     while the account is pending or declined.
//   - POST /sessions/student {"name"}
//
// Every other route except GET /healthz requires a bearer token or the
// session cookie:
//   - GET /rooms, GET /rooms/:id, GET /rooms/:id/next, GET /rooms/:id/qr.png
//   - GET /occupancy (optionally ?day=&time=&date=), GET /occupancy/available,
//     GET /occupancy/in-use, GET /dashboard
//   - GET /schedules (?day=&room=&section=), GET /schedules/sections,
//     GET /timetable (?from=&to=&room=)
//   - POST /schedules, DELETE /schedules/:id: administrators only.
//   - POST /bookings, GET /bookings, DELETE /bookings/:id: teachers only.
//   - GET /users/pending, POST /users/:id/approve, POST /users/:id/reject:
//     administrators only.
//   - POST /assistant {"question"}
//
// Rejected bookings answer 409 for conflicts and 422 for invalid times, with
// the scheduler's message in the body.
package http
