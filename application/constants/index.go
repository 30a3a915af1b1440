package constants

// ekyc response codes
// these consist of 4 digit numbers
//
// the 1st 3 identify the scenario
// 4th indicates if the client should send the user to a manual review or retry screen. 0 means it does not. 1 means it does.

var VERIFICATION_APPROVED uint = 2100      // attempt approved
var VERIFICATION_MANUAL_REVIEW uint = 2111 // tell the user a reviewer will look at the attempt
var VERIFICATION_REJECTED uint = 2121      // ask the user to retake their document or selfie
var VERIFICATION_BYPASSED uint = 2130      // ekyc is disabled in the stored config
var INVALID_VERIFICATION_INPUT uint = 4221 // ask the user to retake the offending capture
var COLLABORATOR_UNAVAILABLE uint = 5030   // a required analysis service is down

var SUPPORTED_DOCUMENT_SIDES = []string{"front", "back", "passport"}
var SUPPORTED_ID_TYPES = []string{"yemen_national_id", "yemen_passport"}

var ADMIN_TOKEN_TYPE = "admin"
