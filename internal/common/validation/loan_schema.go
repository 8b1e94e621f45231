package validation

// LoanRequestSchema describes the create and resubmit payload.
const LoanRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["personalDetails", "employmentDetails", "loanDetails", "existingLoanDetails", "references"],
  "properties": {
    "personalDetails": {
      "type": "object",
      "required": ["firstName", "lastName", "phoneNumber", "emailAddress", "dateOfBirth", "aadhaarNumber", "panNumber"],
      "properties": {
        "firstName": {"type": "string", "minLength": 1},
        "middleName": {"type": "string"},
        "lastName": {"type": "string", "minLength": 1},
        "phoneNumber": {"type": "string", "minLength": 1},
        "emailAddress": {"type": "string", "minLength": 1},
        "currentAddress": {"type": "string"},
        "permanentAddress": {"type": "string"},
        "maritalStatus": {"type": "string"},
        "gender": {"type": "string"},
        "dateOfBirth": {"type": "string", "minLength": 1},
        "aadhaarNumber": {"type": "string", "minLength": 1},
        "panNumber": {"type": "string", "minLength": 1},
        "passportNumber": {"type": "string"},
        "fatherName": {"type": "string"},
        "educationDetails": {"type": "string"}
      }
    },
    "employmentDetails": {
      "type": "object",
      "required": ["occupationType", "totalWorkExperienceYears"],
      "properties": {
        "occupationType": {"type": "string", "enum": ["SALARIED", "SELF_EMPLOYED"]},
        "employerOrBusinessName": {"type": "string"},
        "designation": {"type": "string"},
        "totalWorkExperienceYears": {"type": "number", "minimum": 0},
        "officeAddress": {"type": "string"}
      }
    },
    "loanDetails": {
      "type": "object",
      "required": ["loanType", "loanAmount", "loanDurationMonths"],
      "properties": {
        "loanType": {"type": "string", "enum": ["PERSONAL_LOAN", "VEHICLE_LOAN", "HOME_LOAN"]},
        "loanAmount": {"type": "number", "exclusiveMinimum": 0},
        "loanDurationMonths": {"type": "integer", "minimum": 1},
        "purposeOfLoan": {"type": "string"}
      }
    },
    "existingLoanDetails": {
      "type": "object",
      "required": ["hasExistingLoans"],
      "properties": {
        "hasExistingLoans": {"type": "boolean"},
        "existingLoanType": {"type": "string"},
        "lenderName": {"type": "string"},
        "outstandingAmount": {"type": "number", "minimum": 0},
        "monthlyEmi": {"type": "number", "minimum": 0},
        "tenureRemainingMonths": {"type": "number", "minimum": 0}
      }
    },
    "references": {
      "type": "array",
      "maxItems": 2,
      "items": {
        "type": "object",
        "required": ["referenceNumber", "name", "contactNumber"],
        "properties": {
          "referenceNumber": {"type": "integer", "enum": [1, 2]},
          "name": {"type": "string"},
          "relationship": {"type": "string"},
          "contactNumber": {"type": "string"},
          "address": {"type": "string"}
        }
      }
    }
  }
}`
